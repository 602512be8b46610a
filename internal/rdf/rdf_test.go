package rdf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	return NewGraph(
		T("#value", RDFType, IRI(SSNSensorOutput)),
		T("#value", FOAFIsPrimaryTopicOf, IRI("")),
		T("#value", EXHasLightValue, Decimal(0.25)),
		T("#sensor", RDFValue, Bool(true)),
		T("#sensor", NSEX+"label", LangLiteral("light \"sensor\"", "en")),
	)
}

func TestGraphDeduplicates(t *testing.T) {
	g := NewGraph()
	tr := T("#led", SAREFHasState, IRI(SAREFOn))

	assert.True(t, g.Add(tr))
	assert.False(t, g.Add(tr))
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has(tr))
}

func TestMergeLeavesTemplateUntouched(t *testing.T) {
	tmpl := NewGraph(T("#led", RDFType, IRI(SAREFLightingDevice)))

	on := tmpl.Merge(T("#led", SAREFHasState, IRI(SAREFOn)))
	off := tmpl.Merge(T("#led", SAREFHasState, IRI(SAREFOff)))

	assert.Equal(t, 1, tmpl.Len())
	assert.Equal(t, 2, on.Len())
	assert.Equal(t, 2, off.Len())
	assert.False(t, on.Equal(off))
}

func TestGraphEqualIgnoresOrder(t *testing.T) {
	a := NewGraph(T("s", "p", IRI("o1")), T("s", "p", IRI("o2")))
	b := NewGraph(T("s", "p", IRI("o2")), T("s", "p", IRI("o1")))
	assert.True(t, a.Equal(b))
}

func TestDecimalLexicalForm(t *testing.T) {
	assert.Equal(t, "12.0", Decimal(12).Value)
	assert.Equal(t, "0.125", Decimal(0.125).Value)
	assert.Equal(t, XSDDecimal, Decimal(1).Datatype)
}

func TestTripleValidate(t *testing.T) {
	assert.NoError(t, T("s", "p", Literal("x")).Validate())
	assert.Error(t, Triple{Subject: Literal("x"), Predicate: IRI("p"), Object: IRI("o")}.Validate())
	assert.Error(t, Triple{Subject: IRI("s"), Predicate: Blank("b"), Object: IRI("o")}.Validate())
}

func TestEncodeNTriples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeNTriples(&buf, NewGraph(
		T("#sensor", RDFValue, Bool(false)),
		T("", LDPContains, IRI("light")),
	)))

	want := `<#sensor> <http://www.w3.org/1999/02/22-rdf-syntax-ns#value> "false"^^<http://www.w3.org/2001/XMLSchema#boolean> .
<> <http://www.w3.org/ns/ldp#contains> <light> .
`
	assert.Equal(t, want, buf.String())
}

func TestEncodeTurtle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeTurtle(&buf, sampleGraph()))
	out := buf.String()

	assert.Contains(t, out, "@prefix ssn: <http://www.w3.org/ns/ssn/> .")
	assert.Contains(t, out, "@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .")
	assert.NotContains(t, out, "@prefix saref:", "unused prefixes are omitted")
	assert.Contains(t, out, "<#value> a ssn:SensorOutput ;")
	assert.Contains(t, out, `ex:hasLightValue "0.25"^^xsd:decimal .`)
	assert.Contains(t, out, `"light \"sensor\""@en`)
}

func TestTurtleRoundTrip(t *testing.T) {
	in := sampleGraph()

	var buf bytes.Buffer
	require.NoError(t, EncodeTurtle(&buf, in))

	out, err := DecodeTurtle(&buf, "")
	require.NoError(t, err)
	assert.True(t, in.Equal(out), "decoded graph differs:\n%v", out.Triples())
}

func TestEncodeRDFXMLIsWellFormed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRDFXML(&buf, sampleGraph()))
	out := buf.String()

	assert.Contains(t, out, `<rdf:Description rdf:about="#value">`)
	assert.Contains(t, out, `<rdf:type rdf:resource="http://www.w3.org/ns/ssn/SensorOutput"/>`)
	assert.Contains(t, out, `rdf:datatype="http://www.w3.org/2001/XMLSchema#decimal">0.25</ex:hasLightValue>`)
	assert.Contains(t, out, `xml:lang="en"`)

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
}

func TestEncodeRDFXMLRejectsUnsplittablePredicate(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeRDFXML(&buf, NewGraph(T("s", "http://example.org/p/", IRI("o"))))
	assert.Error(t, err)
}

func TestDecodeStateRequest(t *testing.T) {
	cases := map[string]string{
		"ntriples": `<#led> <https://w3id.org/saref#hasState> <https://w3id.org/saref#On> .`,
		"prefixed": `@prefix saref: <https://w3id.org/saref#> .
<#led> saref:hasState saref:On .`,
		"typed": `@prefix saref: <https://w3id.org/saref#> .
<#led> a saref:LightingDevice ; saref:hasState saref:On .`,
		"comments": `# desired state
@prefix s: <https://w3id.org/saref#> . # saref
<#led> s:hasState s:On . # done`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			g, err := DecodeTurtle(strings.NewReader(doc), "")
			require.NoError(t, err)
			states := g.Match(SAREFHasState)
			require.Len(t, states, 1)
			assert.Equal(t, IRI("#led"), states[0].Subject)
			assert.Equal(t, IRI(SAREFOn), states[0].Object)
		})
	}
}

func TestDecodeObjectLists(t *testing.T) {
	doc := `@prefix ex: <http://example.org/> .
ex:a ex:p ex:b, ex:c ;
     ex:q "x", "multi\nline" ;
     ex:n "42"^^<http://www.w3.org/2001/XMLSchema#integer>, "hallo"@de .`

	g, err := DecodeTurtle(strings.NewReader(doc), "")
	require.NoError(t, err)

	assert.Len(t, g.Match("http://example.org/p"), 2)
	assert.True(t, g.Has(T("http://example.org/a", "http://example.org/q", Literal("x"))))
	assert.True(t, g.Has(T("http://example.org/a", "http://example.org/q", Literal("multi\nline"))))
	assert.True(t, g.Has(T("http://example.org/a", "http://example.org/n", TypedLiteral("42", XSDInteger))))
	assert.True(t, g.Has(T("http://example.org/a", "http://example.org/n", LangLiteral("hallo", "de"))))
}

func TestDecodeEachMediaType(t *testing.T) {
	docs := map[string]string{
		MediaTurtle:   `<#led> <https://w3id.org/saref#hasState> <https://w3id.org/saref#Off> .`,
		MediaNTriples: `<http://gateway.local/leds/1#led> <https://w3id.org/saref#hasState> <https://w3id.org/saref#Off> .`,
		MediaRDFXML: `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:saref="https://w3id.org/saref#">
  <rdf:Description rdf:about="#led">
    <saref:hasState rdf:resource="https://w3id.org/saref#Off"/>
  </rdf:Description>
</rdf:RDF>`,
		MediaJSONLD: `{"@id": "#led", "https://w3id.org/saref#hasState": {"@id": "https://w3id.org/saref#Off"}}`,
	}

	for mt, doc := range docs {
		t.Run(mt, func(t *testing.T) {
			g, err := Decode(strings.NewReader(doc), mt, "http://gateway.local/leds/1")
			require.NoError(t, err)
			want := T("http://gateway.local/leds/1#led", SAREFHasState, IRI(SAREFOff))
			assert.True(t, g.Has(want), "got %v", g.Triples())
			assert.Equal(t, 1, g.Len())
		})
	}
}

func TestDecodeUnsupportedMedia(t *testing.T) {
	_, err := Decode(strings.NewReader("x"), "text/html", "")
	assert.True(t, errors.Is(err, ErrUnsupportedMedia), "error %v", err)
}

func TestJSONLDRoundTrip(t *testing.T) {
	in := sampleGraph()

	var buf bytes.Buffer
	require.NoError(t, EncodeJSONLD(&buf, in))
	assert.Contains(t, buf.String(), `"@id": "#value"`)

	out, err := Decode(&buf, MediaJSONLD, "")
	require.NoError(t, err)
	assert.True(t, in.Equal(out), "decoded graph differs:\n%v", out.Triples())
}

func TestDecodeJSONLDRefusesRemoteContext(t *testing.T) {
	doc := `{"@context": "http://example.org/context.jsonld", "@id": "#led", "state": "on"}`
	_, err := Decode(strings.NewReader(doc), MediaJSONLD, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax), "error %v does not wrap ErrSyntax", err)
}

func TestDecodeResolvesAgainstBase(t *testing.T) {
	doc := `<#led> <https://w3id.org/saref#hasState> <https://w3id.org/saref#Off> .`

	g, err := DecodeTurtle(strings.NewReader(doc), "http://gateway.local/leds/1")
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())
	assert.Equal(t, "http://gateway.local/leds/1#led", g.Triples()[0].Subject.Value)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"undefined prefix": `<a> nope:b <c> .`,
		"literal subject":  `"x" <b> <c> .`,
		"unterminated iri": `<a> <b> <c .`,
		"unterminated str": `<a> <b> "c .`,
		"garbage":          `{}`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTurtle(strings.NewReader(doc), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax), "error %v does not wrap ErrSyntax", err)
		})
	}
}

func TestDecodeMalformedJSONLD(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"@id": `), MediaJSONLD, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax), "error %v does not wrap ErrSyntax", err)
}

func TestDecodeEmptyDocument(t *testing.T) {
	g, err := DecodeTurtle(strings.NewReader("# nothing here\n"), "")
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
}
