// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultWalkScoreURL is the public Walk Score scoring endpoint.
const DefaultWalkScoreURL = "https://api.walkscore.com/score"

// ErrMissingAPIKey is returned by Validate when no Walk Score key is configured.
var ErrMissingAPIKey = errors.New("WALKSCORE_API_KEY is not set")

// Config holds all application configuration.
type Config struct {
	// Server
	Host            string
	Port            string
	Environment     string
	Version         string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Walk Score upstream
	WalkScoreAPIKey       string
	WalkScoreBaseURL      string
	WalkScoreTimeout      time.Duration
	WalkScoreMaxBodyBytes int64

	// Observability
	MetricsEnabled bool
}

// Load reads configuration from environment variables with defaults.
// A .env file in the working directory is read first; variables already
// present in the environment take precedence over it.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	return &Config{
		// Server
		Host:            getEnv("HOST", "0.0.0.0"),
		Port:            getEnv("PORT", "3001"),
		Environment:     getEnv("APP_ENV", "dev"),
		Version:         getEnv("APP_VERSION", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvSeconds("SHUTDOWN_TIMEOUT", 30),

		// Walk Score upstream
		WalkScoreAPIKey:       os.Getenv("WALKSCORE_API_KEY"),
		WalkScoreBaseURL:      getEnv("WALKSCORE_BASE_URL", DefaultWalkScoreURL),
		WalkScoreTimeout:      getEnvSeconds("WALKSCORE_TIMEOUT", 10),
		WalkScoreMaxBodyBytes: int64(getEnvInt("WALKSCORE_MAX_BODY_BYTES", 1<<20)),

		// Observability
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

// Validate reports configuration that would leave the proxy unable to serve.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WalkScoreAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil && i > 0 {
			return i
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}
