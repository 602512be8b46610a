package rdf

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/piprate/json-gold/ld"
)

// Media types the encoders produce.
const (
	MediaTurtle   = "text/turtle"
	MediaNTriples = "application/n-triples"
	MediaRDFXML   = "application/rdf+xml"
	MediaJSONLD   = "application/ld+json"
)

// Encoder writes a graph in one serialization.
type Encoder func(w io.Writer, g *Graph) error

// Encoders maps each supported media type to its encoder. The first entry of
// MediaTypes is the default when the client expresses no preference.
var (
	MediaTypes = []string{MediaTurtle, MediaNTriples, MediaRDFXML, MediaJSONLD}
	Encoders   = map[string]Encoder{
		MediaTurtle:   EncodeTurtle,
		MediaNTriples: EncodeNTriples,
		MediaRDFXML:   EncodeRDFXML,
		MediaJSONLD:   EncodeJSONLD,
	}
)

// EncodeNTriples writes one statement per line.
func EncodeNTriples(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, tr := range g.Triples() {
		if _, err := bw.WriteString(tr.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeTurtle writes the graph grouping statements by subject and compacting
// IRIs with the prefixes in Prefixes that the graph actually uses.
func EncodeTurtle(w io.Writer, g *Graph) error {
	triples := g.Triples()

	used := make(map[string]bool)
	for _, tr := range triples {
		for _, t := range []Term{tr.Subject, tr.Predicate, tr.Object} {
			if p, ok := prefixFor(t); ok {
				used[p.Name] = true
			}
			if t.IsLiteral() && t.Datatype != "" {
				if p, ok := prefixFor(IRI(t.Datatype)); ok {
					used[p.Name] = true
				}
			}
		}
	}

	bw := bufio.NewWriter(w)
	for _, p := range Prefixes {
		if used[p.Name] {
			fmt.Fprintf(bw, "@prefix %s: <%s> .\n", p.Name, p.IRI)
		}
	}
	if len(used) > 0 && len(triples) > 0 {
		bw.WriteString("\n")
	}

	// Subjects in order of first appearance.
	var subjects []Term
	bySubject := make(map[Term][]Triple)
	for _, tr := range triples {
		if _, ok := bySubject[tr.Subject]; !ok {
			subjects = append(subjects, tr.Subject)
		}
		bySubject[tr.Subject] = append(bySubject[tr.Subject], tr)
	}

	for i, s := range subjects {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(turtleTerm(s))
		for j, tr := range bySubject[s] {
			if j == 0 {
				bw.WriteString(" ")
			} else {
				bw.WriteString(" ;\n    ")
			}
			pred := turtleTerm(tr.Predicate)
			if tr.Predicate.Value == RDFType {
				pred = "a"
			}
			bw.WriteString(pred + " " + turtleTerm(tr.Object))
		}
		bw.WriteString(" .\n")
	}
	return bw.Flush()
}

func turtleTerm(t Term) string {
	switch t.Kind {
	case KindIRI:
		if p, ok := prefixFor(t); ok {
			return p.Name + ":" + strings.TrimPrefix(t.Value, p.IRI)
		}
		return t.String()
	case KindLiteral:
		s := `"` + escapeString(t.Value) + `"`
		switch {
		case t.Lang != "":
			return s + "@" + t.Lang
		case t.Datatype != "":
			return s + "^^" + turtleTerm(IRI(t.Datatype))
		}
		return s
	default:
		return t.String()
	}
}

// prefixFor finds a prefix whose namespace starts t and leaves a local name
// that is safe to write unescaped.
func prefixFor(t Term) (Prefix, bool) {
	if !t.IsIRI() {
		return Prefix{}, false
	}
	for _, p := range Prefixes {
		if local, ok := strings.CutPrefix(t.Value, p.IRI); ok && isLocalName(local) {
			return p, true
		}
	}
	return Prefix{}, false
}

func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9') || r == '-':
			if i == 0 && r == '-' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// EncodeRDFXML writes the graph as RDF/XML with one rdf:Description per
// subject. Predicates are split into namespace and local name at the last
// '#' or '/'.
func EncodeRDFXML(w io.Writer, g *Graph) error {
	triples := g.Triples()

	namespaces := make(map[string]string)
	var nsOrder []string
	nsName := func(ns string) string {
		if name, ok := namespaces[ns]; ok {
			return name
		}
		name := ""
		for _, p := range Prefixes {
			if p.IRI == ns {
				name = p.Name
			}
		}
		if name == "" || name == "rdf" {
			name = fmt.Sprintf("ns%d", len(nsOrder))
		}
		namespaces[ns] = name
		nsOrder = append(nsOrder, ns)
		return name
	}

	type element struct {
		qname string
		obj   Term
	}
	var subjects []Term
	bySubject := make(map[Term][]element)
	for _, tr := range triples {
		ns, local, err := splitPredicate(tr.Predicate.Value)
		if err != nil {
			return err
		}
		qname := "rdf:" + local
		if ns != NSRDF {
			qname = nsName(ns) + ":" + local
		}
		if _, ok := bySubject[tr.Subject]; !ok {
			subjects = append(subjects, tr.Subject)
		}
		bySubject[tr.Subject] = append(bySubject[tr.Subject], element{qname, tr.Object})
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(xml.Header)
	bw.WriteString(`<rdf:RDF xmlns:rdf="` + NSRDF + `"`)
	for _, ns := range nsOrder {
		fmt.Fprintf(bw, "\n    xmlns:%s=\"%s\"", namespaces[ns], xmlEscape(ns))
	}
	bw.WriteString(">\n")

	for _, s := range subjects {
		switch s.Kind {
		case KindBlank:
			fmt.Fprintf(bw, "  <rdf:Description rdf:nodeID=\"%s\">\n", xmlEscape(s.Value))
		default:
			fmt.Fprintf(bw, "  <rdf:Description rdf:about=\"%s\">\n", xmlEscape(s.Value))
		}
		for _, el := range bySubject[s] {
			switch el.obj.Kind {
			case KindIRI:
				fmt.Fprintf(bw, "    <%s rdf:resource=\"%s\"/>\n", el.qname, xmlEscape(el.obj.Value))
			case KindBlank:
				fmt.Fprintf(bw, "    <%s rdf:nodeID=\"%s\"/>\n", el.qname, xmlEscape(el.obj.Value))
			default:
				attr := ""
				if el.obj.Lang != "" {
					attr = fmt.Sprintf(" xml:lang=\"%s\"", xmlEscape(el.obj.Lang))
				} else if el.obj.Datatype != "" {
					attr = fmt.Sprintf(" rdf:datatype=\"%s\"", xmlEscape(el.obj.Datatype))
				}
				fmt.Fprintf(bw, "    <%s%s>%s</%s>\n", el.qname, attr, xmlEscape(el.obj.Value), el.qname)
			}
		}
		bw.WriteString("  </rdf:Description>\n")
	}
	bw.WriteString("</rdf:RDF>\n")
	return bw.Flush()
}

// EncodeJSONLD writes the graph as expanded JSON-LD. Relative IRIs are
// written as they are; no compaction is applied.
func EncodeJSONLD(w io.Writer, g *Graph) error {
	dataset := ld.NewRDFDataset()
	for _, tr := range g.Triples() {
		dataset.Graphs["@default"] = append(dataset.Graphs["@default"],
			ld.NewQuad(toLD(tr.Subject), toLD(tr.Predicate), toLD(tr.Object), "@default"))
	}

	doc, err := ld.NewJsonLdProcessor().FromRDF(dataset, jsonLDOptions(""))
	if err != nil {
		return fmt.Errorf("json-ld: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toLD(t Term) ld.Node {
	switch t.Kind {
	case KindBlank:
		return ld.NewBlankNode("_:" + t.Value)
	case KindLiteral:
		switch {
		case t.Lang != "":
			return ld.NewLiteral(t.Value, NSRDF+"langString", t.Lang)
		case t.Datatype == "":
			return ld.NewLiteral(t.Value, XSDString, "")
		default:
			return ld.NewLiteral(t.Value, t.Datatype, "")
		}
	default:
		return ld.NewIRI(t.Value)
	}
}

func splitPredicate(iri string) (ns, local string, err error) {
	i := strings.LastIndexAny(iri, "#/")
	if i < 0 || i == len(iri)-1 {
		return "", "", fmt.Errorf("predicate %q cannot be written as an XML element", iri)
	}
	local = iri[i+1:]
	if !isLocalName(local) || (local[0] >= '0' && local[0] <= '9') {
		return "", "", fmt.Errorf("predicate %q cannot be written as an XML element", iri)
	}
	return iri[:i+1], local, nil
}

func xmlEscape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

func escapeIRI(s string) string {
	r := strings.NewReplacer(`>`, `\u003E`, `<`, `\u003C`, `"`, `\u0022`, " ", `\u0020`)
	return r.Replace(s)
}
