// Package resource describes the gateway's addressable resources and composes
// the RDF document returned for each of them.
//
// Every document is a pure function of a static template and the hardware
// state read at request time. Nothing is cached between requests.
package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/lazypower/sensorgraph/internal/rdf"
)

// LiveFunc computes the request-time triples of a resource.
type LiveFunc func(ctx context.Context) ([]rdf.Triple, error)

// Descriptor is one addressable resource.
type Descriptor struct {
	// Path is the route relative to the parent container, e.g. "/light".
	Path     string
	Template *rdf.Graph
	Live     LiveFunc
}

// Container is a resource whose document also enumerates its children.
// Children are registered once at startup and walked in order per request.
type Container struct {
	Descriptor
	MemberRelation string
	Children       []Descriptor
}

// DocumentFor returns a fresh graph holding the template of d and its live
// triples. The live accessor is called exactly once.
func DocumentFor(ctx context.Context, d Descriptor) (*rdf.Graph, error) {
	doc := d.Template.Clone()
	if d.Live == nil {
		return doc, nil
	}

	live, err := d.Live(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAdapterUnavailable, d.Path, err)
	}
	doc.AddAll(live)
	return doc, nil
}

// ContainerDocumentFor returns the container document plus, for each child
// with a proper relative path, an ldp:contains link and a member link to the
// child's #value.
func ContainerDocumentFor(ctx context.Context, c Container) (*rdf.Graph, error) {
	doc, err := DocumentFor(ctx, c.Descriptor)
	if err != nil {
		return nil, err
	}

	for _, child := range c.Children {
		seg, ok := childSegment(child.Path)
		if !ok {
			continue
		}
		doc.Add(rdf.T("", rdf.LDPContains, rdf.IRI(seg)))
		if c.MemberRelation != "" {
			doc.Add(rdf.T("", c.MemberRelation, rdf.IRI(seg+"#value")))
		}
	}
	return doc, nil
}

// childSegment turns "/light" into "light". The container's own route "/"
// and anything not rooted at the container are skipped.
func childSegment(path string) (string, bool) {
	if !strings.HasPrefix(path, "/") || len(path) < 2 {
		return "", false
	}
	return path[1:], true
}
