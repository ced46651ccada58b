package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Env            string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// Practice defaults
	SessionSize       int
	RandomOrder       bool
	PracticeDirection string // "front" or "back" shown first

	// Known-cards cache
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Env:               getEnv("APP_ENV", "development"),
		DatabaseType:      getEnv("DB_TYPE", "sqlite"),
		DatabasePath:      getEnv("DB_PATH", "./flashdeck.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		SessionSize:       getEnvInt("PRACTICE_SESSION_SIZE", 20),
		RandomOrder:       getEnvBool("PRACTICE_RANDOM_ORDER", true),
		PracticeDirection: getEnv("PRACTICE_DIRECTION", "front"),
		CacheTTL:          getEnvDuration("KNOWN_CACHE_TTL", 5*time.Minute),
		CacheMaxEntries:   getEnvInt("KNOWN_CACHE_MAX_ENTRIES", 256),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool reads a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
