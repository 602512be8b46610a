// Package rdf holds the triple model served by the gateway and the codecs
// used to put it on the wire.
//
// IRIs are stored as written. Relative references such as "#value" or "light"
// stay relative so a document reads the same whichever host serves it; the
// client resolves them against the request URL.
package rdf

import (
	"fmt"
	"strconv"
)

// TermKind discriminates the three kinds of RDF term.
type TermKind int

const (
	KindIRI TermKind = iota
	KindLiteral
	KindBlank
)

// Term is an IRI, a literal or a blank node.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string // literals only; empty means xsd:string
	Lang     string // literals only
}

// IRI returns a named node.
func IRI(v string) Term {
	return Term{Kind: KindIRI, Value: v}
}

// Blank returns a blank node with the given label.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal returns a plain string literal.
func Literal(v string) Term {
	return Term{Kind: KindLiteral, Value: v}
}

// TypedLiteral returns a literal with an explicit datatype IRI.
func TypedLiteral(v, datatype string) Term {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// LangLiteral returns a language-tagged string.
func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: lang}
}

// Bool returns an xsd:boolean literal.
func Bool(b bool) Term {
	return TypedLiteral(strconv.FormatBool(b), XSDBoolean)
}

// Decimal returns an xsd:decimal literal. Whole numbers keep a ".0" so the
// lexical form stays a valid decimal.
func Decimal(f float64) Term {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if _, err := strconv.Atoi(s); err == nil {
		s += ".0"
	}
	return TypedLiteral(s, XSDDecimal)
}

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + escapeIRI(t.Value) + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		s := `"` + escapeString(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + escapeIRI(t.Datatype) + ">"
		}
		return s
	}
}

// Triple is one subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// T is shorthand for a triple whose subject and predicate are IRIs.
func T(subject, predicate string, object Term) Triple {
	return Triple{Subject: IRI(subject), Predicate: IRI(predicate), Object: object}
}

// Validate checks the positional constraints of RDF.
func (tr Triple) Validate() error {
	if tr.Subject.IsLiteral() {
		return fmt.Errorf("literal %s in subject position", tr.Subject)
	}
	if !tr.Predicate.IsIRI() {
		return fmt.Errorf("predicate %s is not an IRI", tr.Predicate)
	}
	return nil
}

// String renders the triple as one N-Triples statement without the newline.
func (tr Triple) String() string {
	return tr.Subject.String() + " " + tr.Predicate.String() + " " + tr.Object.String() + " ."
}
