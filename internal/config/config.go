package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth: when empty, the API runs without authentication (local use).
	APIKey string

	// Template catalog
	TemplatesDir string

	// Persistence collaborator. When StorageURL is empty, documents live
	// only in memory for the lifetime of the process.
	StorageURL       string
	StorageAPIKey    string
	StorageKeyPrefix string

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request limits
	MaxBodyBytes int64
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8095"),

		APIKey: os.Getenv("EC0249_API_KEY"),

		TemplatesDir: envOr("TEMPLATES_DIR", "templates"),

		StorageURL:       os.Getenv("STORAGE_URL"),
		StorageAPIKey:    os.Getenv("STORAGE_API_KEY"),
		StorageKeyPrefix: envOr("STORAGE_KEY_PREFIX", "ec0249/documents"),

		ReadTimeout:  envDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: envDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  envDuration("IDLE_TIMEOUT", 60*time.Second),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 2<<20), // 2MB
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}

	return cfg
}

func (c Config) Validate() error {
	if c.TemplatesDir == "" {
		return fmt.Errorf("TEMPLATES_DIR is required")
	}
	if c.StorageURL != "" && c.StorageAPIKey == "" {
		return fmt.Errorf("STORAGE_API_KEY is required when STORAGE_URL is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
