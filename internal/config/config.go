// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
)

// rawConfig mirrors the environment variables before validation.
type rawConfig struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CommissionRate string `env:"COMMISSION_RATE" envDefault:"0.015"`
	InitialBalance string `env:"INITIAL_BALANCE" envDefault:"10000"`

	OracleBaseURL string        `env:"ORACLE_BASE_URL" envDefault:"https://api.coingecko.com/api/v3"`
	OracleTimeout time.Duration `env:"ORACLE_TIMEOUT" envDefault:"10s"`
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"30s"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Config is the validated service configuration.
type Config struct {
	Port     int
	LogLevel slog.Level

	CommissionRate decimal.Decimal
	InitialBalance decimal.Decimal

	OracleBaseURL string
	OracleTimeout time.Duration
	QuoteCacheTTL time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var raw rawConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if raw.Port < 1 || raw.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", raw.Port)
	}

	level, err := parseLogLevel(raw.LogLevel)
	if err != nil {
		return nil, err
	}

	rate, err := decimal.NewFromString(raw.CommissionRate)
	if err != nil {
		return nil, fmt.Errorf("COMMISSION_RATE is not a valid decimal: %q", raw.CommissionRate)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("COMMISSION_RATE must be in [0, 1), got %s", rate)
	}

	balance, err := decimal.NewFromString(raw.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("INITIAL_BALANCE is not a valid decimal: %q", raw.InitialBalance)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("INITIAL_BALANCE must not be negative, got %s", balance)
	}

	if raw.OracleBaseURL == "" {
		return nil, fmt.Errorf("ORACLE_BASE_URL must not be empty")
	}
	if raw.OracleTimeout <= 0 {
		return nil, fmt.Errorf("ORACLE_TIMEOUT must be positive, got %s", raw.OracleTimeout)
	}
	if raw.QuoteCacheTTL <= 0 {
		return nil, fmt.Errorf("QUOTE_CACHE_TTL must be positive, got %s", raw.QuoteCacheTTL)
	}

	return &Config{
		Port:            raw.Port,
		LogLevel:        level,
		CommissionRate:  rate,
		InitialBalance:  balance,
		OracleBaseURL:   raw.OracleBaseURL,
		OracleTimeout:   raw.OracleTimeout,
		QuoteCacheTTL:   raw.QuoteCacheTTL,
		ReadTimeout:     raw.ReadTimeout,
		WriteTimeout:    raw.WriteTimeout,
		IdleTimeout:     raw.IdleTimeout,
		ShutdownTimeout: raw.ShutdownTimeout,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", s)
	}
}
