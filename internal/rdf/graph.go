package rdf

// Graph is a duplicate-free set of triples that remembers insertion order,
// so encoders produce stable output.
type Graph struct {
	triples []Triple
	index   map[Triple]struct{}
}

// NewGraph returns a graph holding the given triples.
func NewGraph(triples ...Triple) *Graph {
	g := &Graph{index: make(map[Triple]struct{}, len(triples))}
	g.AddAll(triples)
	return g
}

// Add inserts tr and reports whether it was not already present.
func (g *Graph) Add(tr Triple) bool {
	if g.index == nil {
		g.index = make(map[Triple]struct{})
	}
	if _, ok := g.index[tr]; ok {
		return false
	}
	g.index[tr] = struct{}{}
	g.triples = append(g.triples, tr)
	return true
}

// AddAll inserts every triple in order.
func (g *Graph) AddAll(triples []Triple) {
	for _, tr := range triples {
		g.Add(tr)
	}
}

// Has reports whether tr is in the graph.
func (g *Graph) Has(tr Triple) bool {
	_, ok := g.index[tr]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.triples)
}

// Triples returns a copy of the triples in insertion order.
func (g *Graph) Triples() []Triple {
	if g == nil {
		return nil
	}
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return NewGraph()
	}
	return NewGraph(g.triples...)
}

// Merge returns a new graph holding g followed by extra. g is unchanged.
func (g *Graph) Merge(extra ...Triple) *Graph {
	out := g.Clone()
	out.AddAll(extra)
	return out
}

// Match returns the triples whose predicate IRI equals predicate.
func (g *Graph) Match(predicate string) []Triple {
	var out []Triple
	for _, tr := range g.triples {
		if tr.Predicate.IsIRI() && tr.Predicate.Value == predicate {
			out = append(out, tr)
		}
	}
	return out
}

// Equal reports whether both graphs hold the same set of triples.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for _, tr := range g.triples {
		if !other.Has(tr) {
			return false
		}
	}
	return true
}
