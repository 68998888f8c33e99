// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. It's loaded once
// and never mutated afterwards.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	BcryptCost         int
	CorsAllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present; real environment
// variables win over it.
//
// JWT_SECRET is required — token signing with a guessable default would
// make every token forgeable.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               8080,
		DBPath:             getEnv("DB_PATH", "data/blog.db"),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid BCRYPT_COST %q: %w", costStr, err)
		}
		cfg.BcryptCost = cost
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
