// internal/config/config.go
//
// Process configuration for the pebbles server.
// Values come from the environment, optionally seeded from a `.env` file in development.
//
// Environment variables:
//   PORT, LOG_LEVEL, DATABASE_PATH, SESSION_STORE (sqlite|memory), JWT_SECRET,
//   JWT_EXPIRES_DAYS, COOKIE_NAME, CLIENT_ORIGIN, APP_ENV, RANDOM_SALT, REQUEST_TIMEOUT.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath   string        `env:"DATABASE_PATH" envDefault:"./data/pebbles.db"`
	SessionStore   string        `env:"SESSION_STORE" envDefault:"sqlite"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int           `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"pebbles_token"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	RandomSalt     string        `env:"RANDOM_SALT"` // empty: crypto/rand
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	var cfg Config
	// Only defaults are applied, the environment is empty.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.SessionStore {
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.JWTExpiresDays <= 0 {
		return errors.New("config: JWT_EXPIRES_DAYS must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// Production reports whether cookies must be Secure.
func (c Config) Production() bool { return c.AppEnv == "production" }

// TokenTTL is the lifetime of issued auth tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
