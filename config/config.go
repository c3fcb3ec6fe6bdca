// Package config loads runtime configuration from environment variables.
// Only the wiring layer reads it; library packages receive their settings
// through explicit options.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the deployable knobs of the conversational core.
type Config struct {
	// RedisAddr is the primary session tier. Empty runs on the in-memory
	// tier alone (single-process deployments, tests).
	RedisAddr     string `env:"ENTITYDESK_REDIS_ADDR"`
	RedisPassword string `env:"ENTITYDESK_REDIS_PASSWORD"`
	RedisDB       int    `env:"ENTITYDESK_REDIS_DB" envDefault:"0"`

	// SessionTTL is the sliding inactivity window for sessions.
	SessionTTL time.Duration `env:"ENTITYDESK_SESSION_TTL" envDefault:"15m"`
	// NLUTimeout bounds each classification call.
	NLUTimeout time.Duration `env:"ENTITYDESK_NLU_TIMEOUT" envDefault:"5s"`
	// ActionTimeout bounds each domain action invocation.
	ActionTimeout time.Duration `env:"ENTITYDESK_ACTION_TIMEOUT" envDefault:"15s"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"ENTITYDESK_LOG_LEVEL" envDefault:"info"`
	// LogFormat is json or text.
	LogFormat string `env:"ENTITYDESK_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
