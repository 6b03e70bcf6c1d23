// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Alerts AlertsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig holds persistence options.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in RAM.
	Path string
}

// AlertsConfig holds low-stock digest settings.
type AlertsConfig struct {
	// CronSchedule is a standard 5-field cron expression.
	CronSchedule string
	Enabled      bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("POS_PORT", "8080"),
		},
		Store: StoreConfig{
			Path: getenvWithDefault("POS_DB", "workshop.db"),
		},
		Alerts: AlertsConfig{
			CronSchedule: getenvWithDefault("POS_LOWSTOCK_CRON", "0 * * * *"),
			Enabled:      getenvWithDefault("POS_LOWSTOCK_ENABLED", "true") == "true",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("POS_PORT must be provided")
	}
	if c.Store.Path == "" {
		return errors.New("POS_DB must be provided")
	}
	if c.Alerts.Enabled && c.Alerts.CronSchedule == "" {
		return errors.New("POS_LOWSTOCK_CRON must be provided when alerts are enabled")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
