package rdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	knakk "github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

// ErrSyntax is wrapped by every decoding error.
var ErrSyntax = errors.New("rdf syntax error")

// ErrUnsupportedMedia is returned for a media type no decoder reads.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// relativeBase stands in for a missing base so the parsers accept relative
// references. IRIs under it are turned back into relative ones.
const relativeBase = "http://relative.invalid/"

// DecodableTypes lists the media types Decode reads.
var DecodableTypes = []string{MediaTurtle, MediaNTriples, MediaRDFXML, MediaJSONLD}

// DecodeTurtle parses a Turtle document.
func DecodeTurtle(r io.Reader, base string) (*Graph, error) {
	return Decode(r, MediaTurtle, base)
}

// Decode parses a document in mediaType. Relative IRIs are resolved against
// base when it is non-empty; otherwise they are kept as written.
// N-Triples documents must use absolute IRIs.
func Decode(r io.Reader, mediaType, base string) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	resolveAgainst := base
	if resolveAgainst == "" {
		resolveAgainst = relativeBase
	}

	var g *Graph
	switch mediaType {
	case MediaTurtle:
		g, err = decodeTriples(data, knakk.Turtle, resolveAgainst)
	case MediaNTriples:
		g, err = decodeTriples(data, knakk.NTriples, "")
	case MediaRDFXML:
		g, err = decodeTriples(data, knakk.RDFXML, resolveAgainst)
	case MediaJSONLD:
		g, err = decodeJSONLD(data, resolveAgainst)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mediaType)
	}
	if err != nil {
		return nil, err
	}
	if base == "" {
		g = relativize(g)
	}
	return g, nil
}

func decodeTriples(data []byte, format knakk.Format, base string) (*Graph, error) {
	dec := knakk.NewTripleDecoder(bytes.NewReader(data), format)
	if base != "" {
		iri, err := knakk.NewIRI(base)
		if err != nil {
			return nil, fmt.Errorf("base %q: %w", base, err)
		}
		if err := dec.SetOption(knakk.Base, iri); err != nil {
			return nil, fmt.Errorf("base %q: %w", base, err)
		}
	}

	triples, err := dec.DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	g := NewGraph()
	for _, tr := range triples {
		g.Add(Triple{
			Subject:   fromKnakk(tr.Subj),
			Predicate: fromKnakk(tr.Pred),
			Object:    fromKnakk(tr.Obj),
		})
	}
	return g, nil
}

func fromKnakk(t knakk.Term) Term {
	switch t.Type() {
	case knakk.TermBlank:
		return Blank(strings.TrimPrefix(t.String(), "_:"))
	case knakk.TermLiteral:
		lit := t.(knakk.Literal)
		if lang := lit.Lang(); lang != "" {
			return LangLiteral(lit.String(), lang)
		}
		return TypedLiteral(lit.String(), lit.DataType.String())
	default:
		return IRI(t.String())
	}
}

// offlineLoader refuses remote @context documents. A body must carry its
// context inline.
type offlineLoader struct{}

func (offlineLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, "remote context "+u+" is not loaded")
}

func jsonLDOptions(base string) *ld.JsonLdOptions {
	opts := ld.NewJsonLdOptions(base)
	opts.DocumentLoader = offlineLoader{}
	return opts
}

func decodeJSONLD(data []byte, base string) (*Graph, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	out, err := ld.NewJsonLdProcessor().ToRDF(doc, jsonLDOptions(base))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	dataset, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected json-ld result %T", ErrSyntax, out)
	}

	g := NewGraph()
	for _, q := range dataset.Graphs["@default"] {
		g.Add(Triple{
			Subject:   fromLD(q.Subject),
			Predicate: fromLD(q.Predicate),
			Object:    fromLD(q.Object),
		})
	}
	return g, nil
}

func fromLD(n ld.Node) Term {
	switch v := n.(type) {
	case *ld.BlankNode:
		return Blank(strings.TrimPrefix(v.Attribute, "_:"))
	case *ld.Literal:
		if v.Language != "" {
			return LangLiteral(v.Value, v.Language)
		}
		return TypedLiteral(v.Value, v.Datatype)
	default:
		return IRI(n.GetValue())
	}
}

func relativize(g *Graph) *Graph {
	rel := func(t Term) Term {
		if t.IsIRI() && strings.HasPrefix(t.Value, relativeBase) {
			t.Value = strings.TrimPrefix(t.Value, relativeBase)
		}
		return t
	}

	out := NewGraph()
	for _, tr := range g.Triples() {
		out.Add(Triple{Subject: rel(tr.Subject), Predicate: rel(tr.Predicate), Object: rel(tr.Object)})
	}
	return out
}
