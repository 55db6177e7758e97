package config

import (
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	DatabaseURL        string
	ServerPort         string
	BaseURL            string
	FrontendURL        string
	OpenAIKey          string
	AIProvider         string
	AIModel            string
	AIBaseURL          string
	EnableHSTS         bool
	RedisURL           string
	RateLimit          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	ServerDebugMode    bool
	OTELEnabled        bool
	OTELEndpoint       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		AIProvider:         getEnv("AI_PROVIDER", "openai"),
		AIModel:            getEnv("AI_MODEL", ""),
		AIBaseURL:          getEnv("AI_BASE_URL", ""),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RateLimit:          getEnv("RATE_LIMIT", "20-S"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// The Google redirect defaults to the callback route on this server.
	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = cfg.BaseURL + "/api/google/auth/callback"
	}

	return cfg, nil
}

// GoogleConfigured reports whether the Google OAuth client is usable.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
