package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/lazypower/sensorgraph/internal/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	value float64
	err   error
	calls int
}

func (r *stubReader) Read(context.Context) (float64, error) {
	r.calls++
	return r.value, r.err
}

type stubSwitch struct {
	on       bool
	commands int
	err      error
}

func (s *stubSwitch) On() error {
	if s.err != nil {
		return s.err
	}
	s.commands++
	s.on = true
	return nil
}

func (s *stubSwitch) Off() error {
	if s.err != nil {
		return s.err
	}
	s.commands++
	s.on = false
	return nil
}

func (s *stubSwitch) IsOn() bool { return s.on }

type stubPresence bool

func (p stubPresence) IsPresent() bool { return bool(p) }

func TestDocumentForMergesLiveValue(t *testing.T) {
	r := &stubReader{value: 0.42}
	d := LightSensor(r)

	doc, err := DocumentFor(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, 1, r.calls, "live accessor called once per document")
	assert.Equal(t, d.Template.Len()+1, doc.Len())
	assert.True(t, doc.Has(rdf.T("#value", rdf.EXHasLightValue, rdf.Decimal(0.42))))
	assert.Equal(t, 5, d.Template.Len(), "template must not be mutated")
}

func TestDocumentForFreshPerRequest(t *testing.T) {
	r := &stubReader{value: 1}
	d := SoundSensor(r)

	first, err := DocumentFor(context.Background(), d)
	require.NoError(t, err)
	r.value = 2
	second, err := DocumentFor(context.Background(), d)
	require.NoError(t, err)

	assert.True(t, first.Has(rdf.T("#value", rdf.EXHasSoundValue, rdf.Decimal(1))))
	assert.True(t, second.Has(rdf.T("#value", rdf.EXHasSoundValue, rdf.Decimal(2))))
	assert.False(t, second.Has(rdf.T("#value", rdf.EXHasSoundValue, rdf.Decimal(1))))
}

func TestDocumentForAdapterFailure(t *testing.T) {
	ioErr := errors.New("i2c timeout")
	doc, err := DocumentFor(context.Background(), LightSensor(&stubReader{err: ioErr}))

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrAdapterUnavailable)
	assert.ErrorIs(t, err, ioErr)
}

func TestContainerEnumeratesChildren(t *testing.T) {
	c := AmbientContainer(
		LightSensor(&stubReader{}),
		SoundSensor(&stubReader{}),
		Descriptor{Path: "/"},
		Descriptor{Path: ""},
	)

	doc, err := ContainerDocumentFor(context.Background(), c)
	require.NoError(t, err)

	contains := doc.Match(rdf.LDPContains)
	members := doc.Match(rdf.EXHasSensorValue)
	require.Len(t, contains, 2)
	require.Len(t, members, 2)

	assert.Equal(t, rdf.IRI("light"), contains[0].Object, "registration order is kept")
	assert.Equal(t, rdf.IRI("sound"), contains[1].Object)
	assert.Equal(t, rdf.IRI("light#value"), members[0].Object)
	assert.Equal(t, rdf.IRI("sound#value"), members[1].Object)
	assert.True(t, doc.Has(rdf.T("", rdf.RDFType, rdf.IRI(rdf.LDPIndirectContainer))))

	again, err := ContainerDocumentFor(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, doc.Equal(again))
}

func TestContainerWithoutChildren(t *testing.T) {
	c := AmbientContainer()
	doc, err := ContainerDocumentFor(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, doc.Match(rdf.LDPContains))
	assert.Equal(t, c.Template.Len(), doc.Len())
}

func TestPresenceSensor(t *testing.T) {
	present, err := DocumentFor(context.Background(), PresenceSensor(stubPresence(true)))
	require.NoError(t, err)
	assert.True(t, present.Has(rdf.T("#sensor", rdf.RDFValue, rdf.Bool(true))))

	absent, err := DocumentFor(context.Background(), PresenceSensor(stubPresence(false)))
	require.NoError(t, err)
	assert.True(t, absent.Has(rdf.T("#sensor", rdf.RDFValue, rdf.Bool(false))))
	assert.False(t, absent.Has(rdf.T("#sensor", rdf.RDFValue, rdf.Bool(true))))
}

func TestLEDBarHostsEveryLED(t *testing.T) {
	doc, err := DocumentFor(context.Background(), LEDBar(4))
	require.NoError(t, err)

	hosts := doc.Match(rdf.SOSAHosts)
	require.Len(t, hosts, 4)
	assert.Equal(t, rdf.IRI("0#led"), hosts[0].Object)
	assert.Equal(t, rdf.IRI("3#led"), hosts[3].Object)
}

func TestLEDDocumentReflectsState(t *testing.T) {
	sw := &stubSwitch{}
	d := LEDDocument(1, sw)

	doc, err := DocumentFor(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, doc.Has(rdf.T("#led", rdf.SAREFHasState, rdf.IRI(rdf.SAREFOff))))

	sw.on = true
	doc, err = DocumentFor(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, doc.Has(rdf.T("#led", rdf.SAREFHasState, rdf.IRI(rdf.SAREFOn))))
	assert.Len(t, doc.Match(rdf.SAREFHasState), 1)
}

func TestParseTargetState(t *testing.T) {
	hasState := func(obj rdf.Term) rdf.Triple { return rdf.T("#led", rdf.SAREFHasState, obj) }

	on, err := ParseTargetState(rdf.NewGraph(hasState(rdf.IRI(rdf.SAREFOn))))
	require.NoError(t, err)
	assert.True(t, on)

	off, err := ParseTargetState(rdf.NewGraph(
		rdf.T("#led", rdf.RDFType, rdf.IRI(rdf.SAREFLightingDevice)),
		hasState(rdf.IRI(rdf.SAREFOff)),
	))
	require.NoError(t, err)
	assert.False(t, off)

	bad := map[string]*rdf.Graph{
		"no state":      rdf.NewGraph(rdf.T("#led", rdf.RDFType, rdf.IRI(rdf.SAREFLightingDevice))),
		"two states":    rdf.NewGraph(hasState(rdf.IRI(rdf.SAREFOn)), hasState(rdf.IRI(rdf.SAREFOff))),
		"unknown state": rdf.NewGraph(hasState(rdf.IRI(rdf.NSSAREF + "Dimmed"))),
		"literal state": rdf.NewGraph(hasState(rdf.Literal(rdf.SAREFOn))),
	}
	for name, g := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTargetState(g)
			require.ErrorIs(t, err, ErrMalformedRequest)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.NotEmpty(t, reqErr.Reason)
		})
	}
}

func TestApplyStateIsIdempotent(t *testing.T) {
	sw := &stubSwitch{}

	changed, err := ApplyState(sw, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, sw.IsOn())
	assert.Equal(t, 1, sw.commands)

	changed, err = ApplyState(sw, true)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, sw.commands, "already-current state issues no command")

	changed, err = ApplyState(sw, false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, sw.IsOn())
	assert.Equal(t, 2, sw.commands)
}

func TestApplyStateAdapterFailure(t *testing.T) {
	sw := &stubSwitch{err: errors.New("gpio busy")}

	_, err := ApplyState(sw, true)
	assert.ErrorIs(t, err, ErrAdapterUnavailable)
	assert.False(t, sw.IsOn())
}

func TestTurnOffAll(t *testing.T) {
	leds := []*stubSwitch{{on: true}, {}, {on: true}}
	switches := make([]Switch, len(leds))
	for i, l := range leds {
		switches[i] = l
	}

	require.NoError(t, TurnOffAll(switches))
	for i, l := range leds {
		assert.False(t, l.IsOn(), "led %d", i)
		assert.Equal(t, 1, l.commands, "led %d is switched off unconditionally", i)
	}

	leds[1].err = errors.New("gpio busy")
	err := TurnOffAll(switches)
	assert.ErrorIs(t, err, ErrAdapterUnavailable)
	assert.Contains(t, err.Error(), "led 1")
}
