package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/sensorgraph/internal/metrics"
	"github.com/lazypower/sensorgraph/internal/presence"
	"github.com/lazypower/sensorgraph/internal/resource"
	"github.com/lazypower/sensorgraph/internal/store"
	"github.com/rs/zerolog"
)

// Deps is everything the server reads from or drives.
type Deps struct {
	Tracker *presence.Tracker
	Light   resource.Reader
	Sound   resource.Reader
	LEDs    []resource.Switch
	Journal *store.DB
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	Version string
}

// Server is the sensorgraph HTTP document server.
type Server struct {
	tracker *presence.Tracker
	leds    []resource.Switch
	journal *store.DB
	metrics *metrics.Metrics
	log     zerolog.Logger

	root    resource.Descriptor
	light   resource.Descriptor
	sound   resource.Descriptor
	ambient resource.Container
	rfid    resource.Descriptor
	bar     resource.Descriptor

	router  chi.Router
	version string
	started time.Time
}

// New builds the resource tree from d and wires the routes.
func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	light := resource.LightSensor(d.Light)
	sound := resource.SoundSensor(d.Sound)

	s := &Server{
		tracker: d.Tracker,
		leds:    d.LEDs,
		journal: d.Journal,
		metrics: d.Metrics,
		log:     d.Logger.With().Str("component", "http").Logger(),
		root:    resource.RootDocument(),
		light:   light,
		sound:   sound,
		ambient: resource.AmbientContainer(light, sound),
		rfid:    resource.PresenceSensor(d.Tracker),
		bar:     resource.LEDBar(len(d.LEDs)),
		version: d.Version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Listener returns the presence listener that journals and counts registry
// changes.
func (s *Server) Listener() presence.Listener {
	return &recorder{
		tracker: s.tracker,
		journal: s.journal,
		metrics: s.metrics,
		log:     s.log.With().Str("component", "presence").Logger(),
	}
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)

	r.Get("/", s.document("root", s.root))

	r.HandleFunc("/ambient", redirectSlash)
	r.Get("/ambient/", s.container("ambient", s.ambient))
	r.Get("/ambient/light", s.document("light", s.light))
	r.Get("/ambient/sound", s.document("sound", s.sound))

	r.HandleFunc("/rfid", redirectSlash)
	r.Get("/rfid/", s.document("rfid", s.rfid))

	r.HandleFunc("/leds", redirectSlash)
	r.Get("/leds/", s.document("leds", s.bar))
	r.Delete("/leds/", s.handleClearLEDs)
	r.Get("/leds/{index}", s.handleGetLED)
	r.Put("/leds/{index}", s.handlePutLED)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/events", s.handleEvents)
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	journalOK := false
	if s.journal != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		journalOK = s.journal.Healthy(ctx)
		cancel()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"present": s.tracker.IsPresent(),
		"tracked": s.tracker.Len(),
		"leds":    len(s.leds),
		"journal": journalOK,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		jsonError(w, http.StatusServiceUnavailable, "journal not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := s.journal.Recent(limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"events": events,
		"count":  len(events),
	})
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
