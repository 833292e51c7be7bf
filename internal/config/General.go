package config

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Default API endpoints, overridable through environment variables.
const (
	DefaultAnalyticsAPI = "https://analytics.indigoprotocol.io/api"
	DefaultPolygonAPI   = "https://api.polygon.io"
	DefaultCoingeckoAPI = "https://www.coingecko.com"
)

// HTTPTimeout bounds every outbound API request. The pipeline fails fast
// instead of retrying, so a hung request should surface quickly.
const HTTPTimeout = 20 * time.Second

// Config holds all runtime configuration loaded from environment variables.
// It is populated once at startup by LoadConfig and passed explicitly to the
// components that need it.
type Config struct {
	// AnalyticsAPI is the base URL of the protocol analytics API.
	AnalyticsAPI string
	// PolygonAPI is the base URL of the Polygon.io market data API.
	PolygonAPI string
	// PolygonAPIKey authenticates Polygon.io requests. Only required for
	// operations that compute volatility.
	PolygonAPIKey string
	// CoingeckoAPI is the base URL of the Coingecko price chart API.
	CoingeckoAPI string

	// DatabaseURL is the postgres connection string for the audit store.
	// Empty disables run auditing.
	DatabaseURL string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadConfig loads configuration from environment variables. Endpoints fall
// back to their production defaults, credentials stay empty until needed.
func LoadConfig() (Config, error) {
	log.Info().Msg("Loading application configuration from environment variables...")

	cfg := Config{
		AnalyticsAPI:  getEnvOrDefault("ANALYTICS_API_URL", DefaultAnalyticsAPI),
		PolygonAPI:    getEnvOrDefault("POLYGON_API_URL", DefaultPolygonAPI),
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
		CoingeckoAPI:  getEnvOrDefault("COINGECKO_API_URL", DefaultCoingeckoAPI),
		DatabaseURL:   os.Getenv("AUDIT_DB_URL"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
	}

	log.Debug().
		Str("AnalyticsAPI", cfg.AnalyticsAPI).
		Str("PolygonAPI", cfg.PolygonAPI).
		Str("CoingeckoAPI", cfg.CoingeckoAPI).
		Bool("AuditEnabled", cfg.DatabaseURL != "").
		Msg("Configuration loaded successfully.")

	return cfg, nil
}

// RequirePolygonKey returns an error if no Polygon API key is configured.
// Callers that need volatility data check this up front rather than failing
// halfway through a run.
func (c Config) RequirePolygonKey() error {
	if c.PolygonAPIKey == "" {
		return errors.New("environment variable POLYGON_API_KEY is required but not set")
	}
	return nil
}

// getEnvOrDefault retrieves a string environment variable, falling back to
// the given default when unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
