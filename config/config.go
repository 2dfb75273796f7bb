// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every operator-controlled setting of the service.
type Config struct {
	HTTPAddr      string        `env:"USERSWITCH_HTTP_ADDR"      envDefault:":8080"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	SessionSecret string        `env:"USERSWITCH_SESSION_SECRET"`
	NonceSecret   string        `env:"USERSWITCH_NONCE_SECRET"`
	SessionTTL    time.Duration `env:"USERSWITCH_SESSION_TTL"    envDefault:"48h"`
	NonceTTL      time.Duration `env:"USERSWITCH_NONCE_TTL"      envDefault:"24h"`
	AccountPath   string        `env:"USERSWITCH_ACCOUNT_PATH"   envDefault:"/my-account"`
	AdminURL      string        `env:"USERSWITCH_ADMIN_URL"      envDefault:"/wp-admin/"`
	PageSize      int           `env:"USERSWITCH_PAGE_SIZE"      envDefault:"10"`
	LogLevel      string        `env:"USERSWITCH_LOG_LEVEL"      envDefault:"info"`
	RateLimit     float64       `env:"USERSWITCH_RATE_LIMIT"     envDefault:"5"`
	RateBurst     int           `env:"USERSWITCH_RATE_BURST"     envDefault:"20"`
	ShutdownGrace time.Duration `env:"USERSWITCH_SHUTDOWN_GRACE" envDefault:"10s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.AccountPath = "/" + strings.Trim(cfg.AccountPath, "/")
	return cfg, nil
}

// Validate reports settings the server cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("USERSWITCH_SESSION_SECRET must be at least 16 characters"))
	}
	if len(c.NonceSecret) < 16 {
		errs = append(errs, errors.New("USERSWITCH_NONCE_SECRET must be at least 16 characters"))
	}
	if c.SessionSecret != "" && c.SessionSecret == c.NonceSecret {
		errs = append(errs, errors.New("session and nonce secrets must differ"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("USERSWITCH_PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
