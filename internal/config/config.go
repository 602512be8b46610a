package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "SENSORGRAPH_CONFIG"

// Config holds all gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Presence PresenceConfig `yaml:"presence"`
	Ambient  AmbientConfig  `yaml:"ambient"`
	RFID     RFIDConfig     `yaml:"rfid"`
	LEDs     LEDConfig      `yaml:"leds"`
	Journal  JournalConfig  `yaml:"journal"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Bind            string        `yaml:"bind"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type PresenceConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	QuietPeriod  time.Duration `yaml:"quiet_period"`
	MaxAge       int           `yaml:"max_age"`
}

// AmbientConfig points at the light and sound channels. An empty path
// selects a simulated sensor.
type AmbientConfig struct {
	LightPath  string  `yaml:"light_path"`
	LightScale float64 `yaml:"light_scale"`
	SoundPath  string  `yaml:"sound_path"`
	SoundScale float64 `yaml:"sound_scale"`
}

// RFIDConfig selects the tag reader. With no device, SimulateTags (if any)
// are replayed every SimulateInterval.
type RFIDConfig struct {
	Device           string        `yaml:"device"`
	SimulateTags     []string      `yaml:"simulate_tags"`
	SimulateInterval time.Duration `yaml:"simulate_interval"`
}

// LEDConfig sets the number of LEDs and, optionally, their sysfs names.
// Unnamed LEDs are simulated.
type LEDConfig struct {
	Count int      `yaml:"count"`
	Sysfs []string `yaml:"sysfs"`
}

type JournalConfig struct {
	MaxEvents int `yaml:"max_events"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"` // "stdout" or "stderr"
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:            "0.0.0.0",
			Port:            80,
			ShutdownTimeout: 5 * time.Second,
		},
		Presence: PresenceConfig{
			TickInterval: 100 * time.Millisecond,
			QuietPeriod:  50 * time.Millisecond,
			MaxAge:       3,
		},
		RFID: RFIDConfig{
			SimulateInterval: 5 * time.Second,
		},
		LEDs: LEDConfig{
			Count: 4,
		},
		Journal: JournalConfig{
			MaxEvents: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Output: "stderr",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path falls
// back to $SENSORGRAPH_CONFIG, and with neither set the defaults are used.
// SENSORGRAPH_PORT overrides the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		applyEnv(&cfg)
		return cfg, cfg.Validate()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overlays SENSORGRAPH_PORT. The LOG_* variables belong to the
// logger package, see logger.ApplyEnv.
func applyEnv(c *Config) {
	if v := os.Getenv("SENSORGRAPH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate rejects settings the gateway cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Presence.TickInterval <= 0 {
		errs = append(errs, errors.New("presence.tick_interval must be positive"))
	}
	if c.Presence.QuietPeriod < 0 {
		errs = append(errs, errors.New("presence.quiet_period must not be negative"))
	}
	if c.Presence.MaxAge < 1 {
		errs = append(errs, errors.New("presence.max_age must be at least 1"))
	}
	if c.LEDs.Count < 1 || c.LEDs.Count > 64 {
		errs = append(errs, fmt.Errorf("leds.count %d not in 1..64", c.LEDs.Count))
	}
	if len(c.LEDs.Sysfs) > c.LEDs.Count {
		errs = append(errs, fmt.Errorf("leds.sysfs names %d LEDs but leds.count is %d", len(c.LEDs.Sysfs), c.LEDs.Count))
	}
	if c.Journal.MaxEvents < 1 {
		errs = append(errs, errors.New("journal.max_events must be at least 1"))
	}
	return errors.Join(errs...)
}

// Warnings lists settings that are valid but probably not intended.
func (c *Config) Warnings() []string {
	var w []string
	if c.Presence.QuietPeriod >= c.Presence.TickInterval {
		w = append(w, fmt.Sprintf("presence.quiet_period %s >= tick_interval %s: tags only age after a full tick of silence",
			c.Presence.QuietPeriod, c.Presence.TickInterval))
	}
	if c.RFID.Device == "" && len(c.RFID.SimulateTags) == 0 {
		w = append(w, "no rfid.device and no rfid.simulate_tags: presence will always read false")
	}
	return w
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
