// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names, matching internal/db/migrations
// --------------------------------------------------------------------------

const (
	PlantsTable    = "plants"
	PlantCareTable = "plant_care_details"
)

// --------------------------------------------------------------------------
// Provider settings
// --------------------------------------------------------------------------

// ProviderConfig holds credentials and limits for one upstream plant-data API.
type ProviderConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Enabled reports whether credentials are configured for the provider.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

// --------------------------------------------------------------------------
// Config is populated from environment variables
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

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Upstream plant-data providers
	Perenual ProviderConfig
	Trefle   ProviderConfig
	PlantID  ProviderConfig

	// Merge behavior
	ConcurrentFetch bool

	// Upload limits for identify / health-assessment images
	MaxImageBytes int64

	// Stale record refresh
	RefreshInterval time.Duration
	RefreshMaxAge   time.Duration
	RefreshBatch    int
	RefreshWorkers  int

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("ROOTLY_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or ROOTLY_DATABASE_URL must be set")
	}

	providerTimeout := envDuration("PROVIDER_TIMEOUT", 15*time.Second)

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		Perenual: ProviderConfig{
			BaseURL:           envOr("PERENUAL_BASE_URL", "https://perenual.com/api/v2"),
			APIKey:            envOr("PERENUAL_API_KEY", ""),
			Timeout:           providerTimeout,
			RequestsPerMinute: envInt("PERENUAL_REQUESTS_PER_MINUTE", 60),
		},
		Trefle: ProviderConfig{
			BaseURL:           envOr("TREFLE_BASE_URL", "https://trefle.io/api/v1"),
			APIKey:            envOr("TREFLE_API_TOKEN", envOr("TREFLE_API_KEY", "")),
			Timeout:           providerTimeout,
			RequestsPerMinute: envInt("TREFLE_REQUESTS_PER_MINUTE", 120),
		},
		PlantID: ProviderConfig{
			BaseURL:           envOr("PLANT_ID_BASE_URL", "https://api.plant.id/v2"),
			APIKey:            envOr("PLANT_ID_API_KEY", ""),
			Timeout:           envDuration("PLANT_ID_TIMEOUT", 30*time.Second),
			RequestsPerMinute: envInt("PLANT_ID_REQUESTS_PER_MINUTE", 30),
		},

		ConcurrentFetch: envBool("CONCURRENT_PROVIDER_FETCH", true),

		MaxImageBytes: int64(envInt("MAX_IMAGE_MB", 16)) << 20,

		RefreshInterval: envDuration("REFRESH_INTERVAL", 6*time.Hour),
		RefreshMaxAge:   envDuration("REFRESH_MAX_AGE", 30*24*time.Hour),
		RefreshBatch:    envInt("REFRESH_BATCH", 50),
		RefreshWorkers:  envInt("REFRESH_WORKERS", 2),

		CacheEnabled: envBool("CACHE_ENABLED", true),
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

// envDuration accepts Go duration strings ("90s", "6h") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
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
