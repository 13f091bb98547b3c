package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// Provider credentials. Absence degrades the dependent endpoint to
	// its documented fallback or structured-error behavior.
	OpenWeatherAPIKey string
	RapidAPIKey       string
	GoogleAPIKey      string

	// Provider base URLs, overridable for tests and self-hosting.
	OpenWeatherBaseURL string
	ElevationBaseURL   string
	ChatEndpoint       string

	// Elevation cache.
	CacheBackend      string // "memory" or "redis"
	RedisAddress      string
	ElevationCacheTTL time.Duration

	// SyntheticFallback substitutes deterministic synthetic data when a
	// weather or geocoding provider fails or is unconfigured.
	SyntheticFallback bool

	// WarmupInterval controls how often featured locations are refreshed.
	WarmupInterval time.Duration

	// HTTPTimeout is the base timeout of the shared outbound HTTP client.
	HTTPTimeout time.Duration

	// StaticDir holds the built single-page application shell.
	StaticDir string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.RapidAPIKey = os.Getenv("RAPIDAPI_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org")
	cfg.ElevationBaseURL = getenvDefault("ELEVATION_BASE_URL", "https://api.open-elevation.com")
	cfg.ChatEndpoint = getenvDefault("CHAT_ENDPOINT", "https://chatgpt-42.p.rapidapi.com/aitohuman")

	cfg.CacheBackend = getenvDefault("CACHE_BACKEND", "memory")
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want memory or redis", cfg.CacheBackend)
	}
	cfg.RedisAddress = getenvDefault("REDIS_ADDRESS", "localhost:6379")

	ttlStr := getenvDefault("ELEVATION_CACHE_TTL", "1h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ELEVATION_CACHE_TTL: %w", err)
	}
	cfg.ElevationCacheTTL = ttl

	cfg.SyntheticFallback = getenvBool("SYNTHETIC_FALLBACK", true)

	warmupStr := getenvDefault("WARMUP_INTERVAL", "15m")
	warmup, err := time.ParseDuration(warmupStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WARMUP_INTERVAL: %w", err)
	}
	cfg.WarmupInterval = warmup

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.StaticDir = getenvDefault("STATIC_DIR", "web/dist")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
