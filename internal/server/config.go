// config.go - Process configuration parsed from the environment.
package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the backend reads at startup. Values come
// from FM_-prefixed environment variables; defaults match a local
// docker-compose stack.
type Config struct {
	Addr string `env:"FM_ADDR" envDefault:":5000"`

	RedisAddr     string `env:"FM_REDIS_ADDR" envDefault:"localhost:6379"`
	MongoURI      string `env:"FM_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"FM_MONGO_DB" envDefault:"files_manager"`

	// SessionTTL bounds the lifetime of issued tokens.
	SessionTTL time.Duration `env:"FM_SESSION_TTL" envDefault:"24h"`

	// StoreTimeout bounds every individual store call so a stuck Redis or
	// Mongo round trip cannot outlive the request that made it.
	StoreTimeout time.Duration `env:"FM_STORE_TIMEOUT" envDefault:"2s"`

	LogLevel  string `env:"FM_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FM_LOG_FORMAT" envDefault:"text"`

	Version string `env:"FM_VERSION" envDefault:"dev"`
}

// LoadConfig parses and validates configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that would fail in confusing ways later.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: FM_ADDR must not be empty")
	}
	if c.RedisAddr == "" {
		return errors.New("config: FM_REDIS_ADDR must not be empty")
	}
	if c.MongoURI == "" {
		return errors.New("config: FM_MONGO_URI must not be empty")
	}
	if c.MongoDatabase == "" {
		return errors.New("config: FM_MONGO_DB must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: FM_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("config: FM_STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: FM_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
