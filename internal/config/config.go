package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mystore-pos/internal/backend"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	CORSOrigins   string
	Backend       backend.Kind
	APIBaseURL    string
	APITimeout    time.Duration
	DatabaseDSN   string
	KVPath        string // empty keeps the key/value store in memory
	SeedFallback  bool   // use seed data when the backend cannot be loaded
	DefaultSeller string
}

const defaultAPIBaseURL = "http://localhost:3000/api"

// Load reads .env (when present) and the environment. Invalid values stop the process.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("[WARN] .env could not be read:", err)
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatal("[FATAL] ", err)
	}

	if cfg.Backend == backend.KindAPI && cfg.APIBaseURL == defaultAPIBaseURL {
		log.Println("[WARN] API_BASE_URL not set, using", defaultAPIBaseURL)
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS uses the default value, set your own origin in production.")
	}
	return cfg
}

// FromEnv builds and validates the configuration without side effects.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		Backend:       backend.Kind(strings.ToLower(getEnv("POS_BACKEND", string(backend.KindAPI)))),
		APIBaseURL:    getEnv("API_BASE_URL", defaultAPIBaseURL),
		DatabaseDSN:   getEnv("DATABASE_DSN", "mystore.db"),
		KVPath:        getEnv("KV_PATH", ""),
		DefaultSeller: getEnv("DEFAULT_SELLER", "Vendedor"),
	}

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("API_TIMEOUT: %w", err)
	}
	cfg.APITimeout = timeout

	fallback, err := strconv.ParseBool(getEnv("SEED_FALLBACK", "true"))
	if err != nil {
		return nil, fmt.Errorf("SEED_FALLBACK: %w", err)
	}
	cfg.SeedFallback = fallback

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if _, ok := backend.ParseKind(string(c.Backend)); !ok {
		return fmt.Errorf("POS_BACKEND must be one of api, sql, kv, seed (got %q)", c.Backend)
	}
	if c.Backend == backend.KindAPI && !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL (got %q)", c.APIBaseURL)
	}
	if c.Backend == backend.KindSQL && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required for the sql backend")
	}
	if c.APITimeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("HTTP_PORT is not a valid port (got %q)", c.HTTPPort)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
