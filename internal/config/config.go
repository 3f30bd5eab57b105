package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	WeatherAPIKey string

	// Provider endpoints; empty means the public default.
	RainfallBaseURL  string
	ElevationBaseURL string
	WeatherBaseURL   string

	// HTTPTimeout is the outbound client timeout; FetchTimeout bounds each
	// environment fetch inside a request.
	HTTPTimeout  time.Duration
	FetchTimeout time.Duration

	// FetchWorkers sizes the shared fetch pool.
	FetchWorkers int
	// ProviderMaxRetries is 0 (single attempt) unless overridden.
	ProviderMaxRetries int

	// Catalog source: CatalogDSN (PostgreSQL) wins over CatalogPath.
	CatalogPath           string
	CatalogDSN            string
	CatalogStrict         bool
	CatalogOptional       bool
	CatalogReloadInterval time.Duration // 0 = never reload

	// CORSAllowOrigins is a comma separated origin list for the HTTP API.
	CORSAllowOrigins string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.RainfallBaseURL = os.Getenv("RAINFALL_BASE_URL")
	cfg.ElevationBaseURL = os.Getenv("ELEVATION_BASE_URL")
	cfg.WeatherBaseURL = os.Getenv("WEATHERAPI_BASE_URL")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CatalogReloadInterval, err = getenvDuration("CATALOG_RELOAD_INTERVAL", "0"); err != nil {
		return nil, err
	}

	cfg.FetchWorkers = getenvInt("FETCH_WORKERS", 8)
	if cfg.FetchWorkers <= 0 {
		return nil, fmt.Errorf("invalid FETCH_WORKERS: must be positive")
	}
	cfg.ProviderMaxRetries = getenvInt("PROVIDER_MAX_RETRIES", 0)

	cfg.CatalogPath = getenvDefault("CATALOG_PATH", "data/crop_ecology.csv")
	cfg.CatalogDSN = os.Getenv("CATALOG_DSN")
	cfg.CatalogStrict = getenvBool("CATALOG_STRICT", false)
	cfg.CatalogOptional = getenvBool("CATALOG_OPTIONAL", false)

	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
