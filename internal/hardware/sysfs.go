package hardware

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileSensor reads a number from a file, typically an IIO channel such as
// /sys/bus/iio/devices/iio:device0/in_illuminance_raw.
type FileSensor struct {
	Path  string
	Scale float64
}

// NewFileSensor returns a sensor reading path and multiplying by scale.
// A zero scale means 1.
func NewFileSensor(path string, scale float64) *FileSensor {
	if scale == 0 {
		scale = 1
	}
	return &FileSensor{Path: path, Scale: scale}
}

func (s *FileSensor) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.Path, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse %s: non-finite reading %q", s.Path, strings.TrimSpace(string(raw)))
	}
	return v * s.Scale, nil
}

// SysfsLED drives an LED exposed under /sys/class/leds.
type SysfsLED struct {
	dir string
}

// NewSysfsLED returns the LED at dir, e.g. /sys/class/leds/led0. A bare name
// is resolved under /sys/class/leds.
func NewSysfsLED(dir string) *SysfsLED {
	if !strings.ContainsRune(dir, os.PathSeparator) {
		dir = filepath.Join("/sys/class/leds", dir)
	}
	return &SysfsLED{dir: dir}
}

func (l *SysfsLED) brightness() string { return filepath.Join(l.dir, "brightness") }

func (l *SysfsLED) On() error {
	level := "1"
	if raw, err := os.ReadFile(filepath.Join(l.dir, "max_brightness")); err == nil {
		level = strings.TrimSpace(string(raw))
	}
	return l.write(level)
}

func (l *SysfsLED) Off() error {
	return l.write("0")
}

// IsOn reports a non-zero brightness. An unreadable LED reads as off.
func (l *SysfsLED) IsOn() bool {
	raw, err := os.ReadFile(l.brightness())
	if err != nil {
		return false
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	return err == nil && v > 0
}

func (l *SysfsLED) write(v string) error {
	if err := os.WriteFile(l.brightness(), []byte(v+"\n"), 0o644); err != nil {
		return fmt.Errorf("set %s: %w", l.dir, err)
	}
	return nil
}
