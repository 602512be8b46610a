package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/sensorgraph/internal/rdf"
	"github.com/lazypower/sensorgraph/internal/resource"
	"github.com/lazypower/sensorgraph/internal/store"
	"github.com/munnerz/goautoneg"
)

// maxBodySize caps PUT documents. A state change is a single triple.
const maxBodySize = 64 << 10

// document serves the composed graph of d.
func (s *Server) document(name string, d resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, name, func(ctx context.Context) (*rdf.Graph, error) {
			return resource.DocumentFor(ctx, d)
		})
	}
}

// container serves the composed graph of c including its child links.
func (s *Server) container(name string, c resource.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, name, func(ctx context.Context) (*rdf.Graph, error) {
			return resource.ContainerDocumentFor(ctx, c)
		})
	}
}

// render negotiates the media type before touching hardware, so a 406 never
// costs a sensor read.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, compose func(context.Context) (*rdf.Graph, error)) {
	mediaType, ok := negotiate(r.Header.Get("Accept"))
	if !ok {
		http.Error(w, "Not Acceptable", http.StatusNotAcceptable)
		return
	}

	g, err := compose(r.Context())
	if err != nil {
		s.fail(w, name, err)
		return
	}

	var buf bytes.Buffer
	if err := rdf.Encoders[mediaType](&buf, g); err != nil {
		s.log.Error().Err(err).Str("resource", name).Str("media_type", mediaType).Msg("encode document")
		http.Error(w, "failed to encode document", http.StatusInternalServerError)
		return
	}

	s.metrics.Documents.WithLabelValues(name, mediaType).Inc()
	w.Header().Set("Content-Type", mediaType+"; charset=utf-8")
	w.Header().Set("Vary", "Accept")
	w.Write(buf.Bytes())
}

// negotiate picks a serialization for the Accept header. A missing header
// means the default, Turtle.
func negotiate(accept string) (string, bool) {
	if accept == "" {
		return rdf.MediaTypes[0], true
	}
	mt := goautoneg.Negotiate(accept, rdf.MediaTypes)
	return mt, mt != ""
}

func redirectSlash(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

// ledIndex resolves the {index} URL parameter. Only canonical decimal
// numbers inside the bar are accepted.
func (s *Server) ledIndex(r *http.Request) (int, resource.Switch, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= len(s.leds) || strconv.Itoa(i) != raw {
		return 0, nil, fmt.Errorf("%w: led %q", resource.ErrNotFound, raw)
	}
	return i, s.leds[i], nil
}

func (s *Server) handleGetLED(w http.ResponseWriter, r *http.Request) {
	i, sw, err := s.ledIndex(r)
	if err != nil {
		s.fail(w, "led", err)
		return
	}
	d := resource.LEDDocument(i, sw)
	s.render(w, r, "led", func(ctx context.Context) (*rdf.Graph, error) {
		return resource.DocumentFor(ctx, d)
	})
}

func (s *Server) handlePutLED(w http.ResponseWriter, r *http.Request) {
	i, sw, err := s.ledIndex(r)
	if err != nil {
		s.fail(w, "led", err)
		return
	}

	mediaType, ok := bodyMediaType(r.Header.Get("Content-Type"))
	if !ok {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	g, err := rdf.Decode(http.MaxBytesReader(w, r.Body, maxBodySize), mediaType, requestBase(r))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target, err := resource.ParseTargetState(g)
	if err != nil {
		s.fail(w, "led", err)
		return
	}

	subject := "/leds/" + strconv.Itoa(i)
	changed, err := resource.ApplyState(sw, target)
	if err != nil {
		s.fail(w, "led", err)
		return
	}

	if changed {
		state, kind := "off", store.KindLEDOff
		if target {
			state, kind = "on", store.KindLEDOn
		}
		s.metrics.LEDCommands.WithLabelValues(strconv.Itoa(i), state).Inc()
		s.journalEvent(kind, subject, "")
		s.log.Info().Int("led", i).Str("state", state).Msg("led switched")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearLEDs(w http.ResponseWriter, r *http.Request) {
	if err := resource.TurnOffAll(s.leds); err != nil {
		s.fail(w, "leds", err)
		return
	}
	for i := range s.leds {
		s.metrics.LEDCommands.WithLabelValues(strconv.Itoa(i), "off").Inc()
	}
	s.journalEvent(store.KindLEDsCleared, "/leds/", strconv.Itoa(len(s.leds))+" leds")
	w.WriteHeader(http.StatusNoContent)
}

// bodyMediaType resolves the decoder for a PUT body. An absent Content-Type
// is read as Turtle.
func bodyMediaType(contentType string) (string, bool) {
	if contentType == "" {
		return rdf.MediaTurtle, true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	return mt, slices.Contains(rdf.DecodableTypes, mt)
}

// requestBase is the absolute URL of the request, against which relative
// IRIs in a body resolve.
func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host + r.URL.Path
}

// fail maps resource errors onto status codes and writes the reason as
// plain text.
func (s *Server) fail(w http.ResponseWriter, name string, err error) {
	var reqErr *resource.RequestError
	switch {
	case errors.As(err, &reqErr):
		http.Error(w, reqErr.Reason, http.StatusBadRequest)
	case errors.Is(err, resource.ErrMalformedRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, resource.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, resource.ErrAdapterUnavailable):
		s.metrics.AdapterErrors.WithLabelValues(name).Inc()
		s.journalEvent(store.KindAdapterError, name, err.Error())
		s.log.Error().Err(err).Str("resource", name).Msg("adapter unavailable")
		http.Error(w, "adapter unavailable", http.StatusInternalServerError)
	default:
		s.log.Error().Err(err).Str("resource", name).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) journalEvent(kind store.Kind, subject, detail string) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(kind, subject, detail); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("journal append failed")
	}
}
