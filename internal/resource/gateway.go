package resource

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lazypower/sensorgraph/internal/rdf"
)

// Reader is a sensor that yields one numeric reading per call.
type Reader interface {
	Read(ctx context.Context) (float64, error)
}

// Switch is a two-state actuator.
type Switch interface {
	On() error
	Off() error
	IsOn() bool
}

// Presence reports whether a tag is currently in range.
type Presence interface {
	IsPresent() bool
}

// RootDocument describes the platform and the devices it hosts.
func RootDocument() Descriptor {
	return Descriptor{
		Path: "/",
		Template: rdf.NewGraph(
			rdf.T("#it", rdf.RDFType, rdf.IRI(rdf.SOSAPlatform)),
			rdf.T("#it", rdf.SOSAHosts, rdf.IRI("ambient/sound#sensor")),
			rdf.T("#it", rdf.SOSAHosts, rdf.IRI("ambient/light#sensor")),
			rdf.T("#it", rdf.SOSAHosts, rdf.IRI("leds/#bar")),
			rdf.T("#it", rdf.SOSAHosts, rdf.IRI("rfid/#sensor")),
		),
	}
}

func observationTemplate() *rdf.Graph {
	return rdf.NewGraph(
		rdf.T("#value", rdf.RDFType, rdf.IRI(rdf.SSNSensorOutput)),
		rdf.T("#value", rdf.RDFType, rdf.IRI(rdf.QBObservation)),
		rdf.T("#value", rdf.FOAFIsPrimaryTopicOf, rdf.IRI("")),
		rdf.T("#value", rdf.SSNIsValueOf, rdf.IRI("#sensorOutput")),
		rdf.T("#sensorOutput", rdf.SSNIsProducedBy, rdf.IRI("#sensor")),
	)
}

// Observation describes a sensor reading published under path with the
// reading attached to #value through predicate.
func Observation(path, predicate string, r Reader) Descriptor {
	return Descriptor{
		Path:     path,
		Template: observationTemplate(),
		Live: func(ctx context.Context) ([]rdf.Triple, error) {
			v, err := r.Read(ctx)
			if err != nil {
				return nil, err
			}
			return []rdf.Triple{rdf.T("#value", predicate, rdf.Decimal(v))}, nil
		},
	}
}

// LightSensor is the ambient light level resource.
func LightSensor(r Reader) Descriptor {
	return Observation("/light", rdf.EXHasLightValue, r)
}

// SoundSensor is the ambient sound level resource.
func SoundSensor(r Reader) Descriptor {
	return Observation("/sound", rdf.EXHasSoundValue, r)
}

// AmbientContainer is the LDP indirect container listing the ambient sensors.
func AmbientContainer(children ...Descriptor) Container {
	return Container{
		Descriptor: Descriptor{
			Path: "/",
			Template: rdf.NewGraph(
				rdf.T("", rdf.RDFType, rdf.IRI(rdf.LDPIndirectContainer)),
				rdf.T("", rdf.LDPHasMemberRelation, rdf.IRI(rdf.EXHasSensorValue)),
				rdf.T("", rdf.LDPInsertedContentRelation, rdf.IRI(rdf.FOAFPrimaryTopic)),
			),
		},
		MemberRelation: rdf.EXHasSensorValue,
		Children:       children,
	}
}

// PresenceSensor publishes the RFID presence boolean.
func PresenceSensor(p Presence) Descriptor {
	return Descriptor{
		Path: "/",
		Template: rdf.NewGraph(
			rdf.T("#sensor", rdf.RDFType, rdf.IRI(rdf.SOSASensor)),
		),
		Live: func(context.Context) ([]rdf.Triple, error) {
			return []rdf.Triple{rdf.T("#sensor", rdf.RDFValue, rdf.Bool(p.IsPresent()))}, nil
		},
	}
}

// LEDBar describes the platform hosting count LEDs, indexed from 0.
func LEDBar(count int) Descriptor {
	g := rdf.NewGraph(
		rdf.T("#bar", rdf.RDFType, rdf.IRI(rdf.SOSAPlatform)),
		rdf.T("#bar", rdf.FOAFIsPrimaryTopicOf, rdf.IRI("")),
	)
	for i := 0; i < count; i++ {
		g.Add(rdf.T("#bar", rdf.SOSAHosts, rdf.IRI(strconv.Itoa(i)+"#led")))
	}
	return Descriptor{Path: "/", Template: g}
}

// LEDDocument describes one LED and its current state.
func LEDDocument(index int, sw Switch) Descriptor {
	return Descriptor{
		Path: "/" + strconv.Itoa(index),
		Template: rdf.NewGraph(
			rdf.T("#led", rdf.RDFType, rdf.IRI(rdf.SAREFLightingDevice)),
			rdf.T("#led", rdf.FOAFIsPrimaryTopicOf, rdf.IRI("")),
		),
		Live: func(context.Context) ([]rdf.Triple, error) {
			state := rdf.SAREFOff
			if sw.IsOn() {
				state = rdf.SAREFOn
			}
			return []rdf.Triple{rdf.T("#led", rdf.SAREFHasState, rdf.IRI(state))}, nil
		},
	}
}

// ParseTargetState extracts the requested state from a write. The graph must
// hold exactly one saref:hasState triple and its object must be saref:On or
// saref:Off.
func ParseTargetState(g *rdf.Graph) (bool, error) {
	states := g.Match(rdf.SAREFHasState)
	if len(states) != 1 {
		return false, malformed("Please supply exactly one triple with desired state")
	}

	obj := states[0].Object
	if obj.IsIRI() {
		switch obj.Value {
		case rdf.SAREFOn:
			return true, nil
		case rdf.SAREFOff:
			return false, nil
		}
	}
	return false, malformed("Please supply a triple with saref:hasState as predicate and saref:Off or saref:On as object")
}

// ApplyState drives sw to target. Nothing is sent to the adapter when sw is
// already in the target state.
func ApplyState(sw Switch, target bool) (changed bool, err error) {
	if sw.IsOn() == target {
		return false, nil
	}

	if target {
		err = sw.On()
	} else {
		err = sw.Off()
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrAdapterUnavailable, err)
	}
	return true, nil
}

// TurnOffAll switches every actuator off, whatever its current state, and
// reports all failures together.
func TurnOffAll(switches []Switch) error {
	var errs []error
	for i, sw := range switches {
		if err := sw.Off(); err != nil {
			errs = append(errs, fmt.Errorf("led %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrAdapterUnavailable, errors.Join(errs...))
	}
	return nil
}
