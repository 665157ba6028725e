// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config aggregates all settings for the server.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string

	// DBPath is the SQLite database file path.
	DBPath string

	// ClaimPolicy is "exclusive" or "shared"; see the claim arbitrator.
	ClaimPolicy string

	// AllowedOrigin is the CORS origin served to browsers.
	AllowedOrigin string

	// LogJSON switches logging from colored text to JSON output.
	LogJSON bool
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:          addrFromEnv(),
		DBPath:        getEnv("DB_PATH", "./data/tabshare.db"),
		ClaimPolicy:   strings.ToLower(getEnv("CLAIM_POLICY", "exclusive")),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		LogJSON:       strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
	}

	if strings.Contains(cfg.Addr, " ") {
		return nil, fmt.Errorf("invalid PORT value: %q", cfg.Addr)
	}
	return cfg, nil
}

func addrFromEnv() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	// Accept both "8080" and ":8080" / "127.0.0.1:8080".
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
