// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration.
type Config struct {
	BaseURL        string
	SessionToken   string
	StallTimeout   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string // json or text
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; plain environment variables take over.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:        getEnv("INCUBE_BASE_URL", "http://localhost:8000"),
		SessionToken:   getEnv("INCUBE_SESSION_TOKEN", ""),
		StallTimeout:   getEnvDuration("INCUBE_STALL_TIMEOUT", 45*time.Second),
		RequestTimeout: getEnvDuration("INCUBE_REQUEST_TIMEOUT", 30*time.Second),
		LogLevel:       getEnv("INCUBE_LOG_LEVEL", "info"),
		LogFormat:      getEnv("INCUBE_LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are sane.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("INCUBE_BASE_URL cannot be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("INCUBE_BASE_URL must be an http(s) URL")
	}
	if c.StallTimeout <= 0 {
		return fmt.Errorf("INCUBE_STALL_TIMEOUT must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("INCUBE_REQUEST_TIMEOUT must be > 0")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("INCUBE_LOG_FORMAT must be json or text")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are treated as seconds.
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
