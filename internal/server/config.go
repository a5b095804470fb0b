// Package server provides configuration loading with runtime defaults,
// sanitation, and rate-limiting parameters for the Parlor relay.
package server

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the relay's runtime settings, bound from environment
// variables.
type Config struct {
	Port            string        `envconfig:"SERVER_PORT" default:":8080"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	MaxMessageSize  int64         `envconfig:"MAX_MESSAGE_SIZE" default:"4096"`
	RatePerSecond   float64       `envconfig:"RATE_LIMIT_PER_SECOND" default:"20"`
	RateBurst       int           `envconfig:"RATE_LIMIT_BURST" default:"40"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig binds configuration from the environment and sanitizes it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg.sanitize(), nil
}

// DefaultConfig returns the configuration used when no environment overrides
// are present.
func DefaultConfig() Config {
	return Config{
		Port:            ":8080",
		AllowedOrigins:  []string{"http://localhost:8080"},
		MaxMessageSize:  4096,
		RatePerSecond:   20,
		RateBurst:       40,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
	}.sanitize()
}

// sanitize replaces zero or nonsensical values with workable defaults rather
// than failing startup.
func (c Config) sanitize() Config {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 20
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 40
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

// SlogLevel maps the configured log level name onto a slog level, defaulting
// to Info for unknown names.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
