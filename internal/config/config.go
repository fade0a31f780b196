package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the backend used when nothing else is configured
const DefaultAPIURL = "http://localhost:8080"

// Config holds all configuration for the application
type Config struct {
	// Backend API Configuration
	API APIConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	URL         string
	Timeout     time.Duration
	InsecureTLS bool // accept self-signed certificates (development only)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	apiURL := os.Getenv("NEWSOX_API_URL")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	timeout := 30 * time.Second
	if v := os.Getenv("NEWSOX_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NEWSOX_HTTP_TIMEOUT %q: %w", v, err)
		}
		timeout = d
	}

	insecure := false
	if v := os.Getenv("NEWSOX_INSECURE_TLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NEWSOX_INSECURE_TLS %q: %w", v, err)
		}
		insecure = b
	}

	// Logging configuration - the CLI stays quiet unless asked
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		API: APIConfig{
			URL:         apiURL,
			Timeout:     timeout,
			InsecureTLS: insecure,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
