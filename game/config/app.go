package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// AppConfig holds the process settings. Values come from the environment
// (after an optional .env file) and may be overridden by command-line flags.
type AppConfig struct {
	Host            string        `env:"HOST"             envDefault:"localhost"`
	Port            int           `env:"PORT"             envDefault:"8080"`
	ConfigDir       string        `env:"CONFIG_DIR"       envDefault:"configs"`
	DefaultRoster   string        `env:"DEFAULT_ROSTER"   envDefault:"classic"`
	StaticDir       string        `env:"STATIC_DIR"       envDefault:"public"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	Debug           bool          `env:"DEBUG"`
	SessionTTL      time.Duration `env:"SESSION_TTL"      envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1m"`
	NgrokEnabled    bool          `env:"NGROK_ENABLED"`
	NgrokAuthToken  string        `env:"NGROK_AUTHTOKEN"`
	NgrokDomain     string        `env:"NGROK_DOMAIN"`
}

// LoadAppConfig reads the process settings from the environment
func LoadAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Addr returns the host:port the HTTP server binds to
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EffectiveLogLevel returns the log level, forced to debug in debug mode
func (c *AppConfig) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
