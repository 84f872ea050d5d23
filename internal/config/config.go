// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/hackctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	OrganizationsTable = "organizations"
	UsersTable         = "users"
	HackathonsTable    = "hackathons"
	RoundsTable        = "rounds"
	TeamsTable         = "teams"
	SubmissionsTable   = "submissions"
	MessagesTable      = "messages"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

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

	// Auth
	JWTSecret string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Sweep
	SweepHourUTC          int  // daily trigger hour, 0-23
	SweepWorkers          int  // per-round team concurrency
	RemindersEnabled      bool // reminder generation kill switch
	RiskThreshold         int  // at-risk cutoff for the scheduled sweep
	LifecycleAutoActivate bool // whether the evaluator may flip inactive rounds active

	// Oracle (advisory; empty key disables it)
	OracleAPIKey  string
	OracleModel   string
	OracleTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	secret := envOr("AUTH_JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set")
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

		JWTSecret: secret,

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		SweepHourUTC:          envInt("SWEEP_HOUR_UTC", 9),
		SweepWorkers:          envInt("SWEEP_WORKERS", 4),
		RemindersEnabled:      envBool("REMINDERS_ENABLED", true),
		RiskThreshold:         envInt("RISK_THRESHOLD", 50),
		LifecycleAutoActivate: envBool("LIFECYCLE_AUTO_ACTIVATE", true),

		OracleAPIKey:  envOr("ORACLE_API_KEY", ""),
		OracleModel:   envOr("ORACLE_MODEL", "claude-sonnet-4-5-20250929"),
		OracleTimeout: time.Duration(envInt("ORACLE_TIMEOUT_SECONDS", 20)) * time.Second,
	}, nil
}

// IsProduction returns true if running in production environment.
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
