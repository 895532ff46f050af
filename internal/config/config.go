package config

import (
	"fmt"
	"os"
)

// Config holds all configuration for the eldesc CLI.
type Config struct {
	DatabaseURL  string
	RedisURL     string
	SynonymsPath string
	ProjectRoot  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg := &Config{
		DatabaseURL:  getEnv("ELDESC_DATABASE_URL", "postgres://localhost:5432/eldesc?sslmode=disable"),
		RedisURL:     getEnv("ELDESC_REDIS_URL", "redis://localhost:6379/0"),
		SynonymsPath: getEnv("ELDESC_SYNONYMS", ""),
		ProjectRoot:  getEnv("ELDESC_PROJECT_ROOT", projectRoot),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
