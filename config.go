package main

import (
	"os"
)

const defaultBaseURL = "https://api.twitterapi.io"

// Config holds process configuration, sourced from environment variables.
type Config struct {
	APIKey   string // TWITTERAPI_API_KEY; absence is a warning, not fatal
	BaseURL  string // TWITTERAPI_BASE_URL; override for tests and staging
	ProxyURL string // TWITTERAPI_PROXY_URL; optional forward proxy for all upstream calls
}

// LoadConfig reads configuration from the environment.
func LoadConfig() Config {
	cfg := Config{
		APIKey:   getEnv("TWITTERAPI_API_KEY", ""),
		BaseURL:  getEnv("TWITTERAPI_BASE_URL", defaultBaseURL),
		ProxyURL: getEnv("TWITTERAPI_PROXY_URL", ""),
	}
	if cfg.APIKey == "" {
		GetLogger().Warn("TWITTERAPI_API_KEY not set; upstream calls will fail with 401")
	}
	return cfg
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
