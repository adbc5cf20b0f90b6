// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/api and cmd/simulate.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is populated from environment variables.
type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// Scoring oracle sidecar
	OracleURL     string
	OracleTimeout time.Duration

	// Broadcast
	BroadcastQueueSize int // bounded dispatch queue between ingest and hub
	WSSendBuffer       int // per-subscriber outbound queue

	// CORS
	CORSAllowOrigins []string

	// Rate limiting (read-side endpoints only)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// Fact log retention
	RetentionSweepInterval time.Duration // zero disables the sweeper
	RetentionMaxAge        time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		OracleURL:     envOr("ORACLE_URL", "http://localhost:8500"),
		OracleTimeout: time.Duration(envInt("ORACLE_TIMEOUT_SECONDS", 10)) * time.Second,

		BroadcastQueueSize: envInt("BROADCAST_QUEUE_SIZE", 256),
		WSSendBuffer:       envInt("WS_SEND_BUFFER", 64),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"*"}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),

		RetentionSweepInterval: time.Duration(envInt("RETENTION_SWEEP_MINUTES", 30)) * time.Minute,
		RetentionMaxAge:        time.Duration(envInt("RETENTION_MAX_AGE_DAYS", 30)) * 24 * time.Hour,
	}, nil
}

// IsProduction returns true if running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
