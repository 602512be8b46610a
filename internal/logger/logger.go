// Package logger provides JSON structured logging using zerolog
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

type Config struct {
	Level  string
	Output string
	Debug  bool
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if err := Init(DefaultConfig()); err != nil {
		globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// DefaultConfig is the info level stderr logger with the environment applied.
func DefaultConfig() Config {
	return ApplyEnv(Config{Level: "info", Output: "stderr"})
}

// ApplyEnv overlays LOG_LEVEL, LOG_OUTPUT and DEBUG onto c. The environment
// wins over configuration files.
func ApplyEnv(c Config) Config {
	c.Level = getEnvOrDefault("LOG_LEVEL", c.Level)
	c.Output = getEnvOrDefault("LOG_OUTPUT", c.Output)
	if d := os.Getenv("DEBUG"); d == "true" || d == "1" {
		c.Debug = true
	}
	return c
}

func Init(config Config) error {
	var output io.Writer = os.Stderr

	if config.Output == "stdout" {
		output = os.Stdout
	}

	return InitWithWriter(config, output)
}

// InitWithWriter is Init with an explicit destination, used by tests.
func InitWithWriter(config Config, output io.Writer) error {
	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return err
		}
	}

	globalLogger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = globalLogger

	return nil
}

func GetLogger() zerolog.Logger {
	return globalLogger
}

func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}
