// Package hardware holds the sensor, actuator and RFID drivers the gateway
// talks to. Real devices are reached through Linux sysfs and character
// devices; every driver has a simulated twin for development boards without
// the hardware attached.
package hardware

import (
	"context"

	"github.com/lazypower/sensorgraph/internal/presence"
)

// Sensor yields one numeric reading per call.
type Sensor interface {
	Read(ctx context.Context) (float64, error)
}

// Actuator is a two-state output such as an LED or relay.
type Actuator interface {
	On() error
	Off() error
	IsOn() bool
}

// TagSource is an RFID reader delivering tag arrivals and read errors.
type TagSource interface {
	presence.Source
	Close() error
}
