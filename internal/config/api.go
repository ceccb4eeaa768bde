package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/cardscan/pkg/middleware"
)

const (
	EnvAPIBasePath = "CARDSCAN_API_BASE_PATH"
	EnvAppBasePath = "CARDSCAN_APP_BASE_PATH"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CARDSCAN_CORS_ENABLED",
	Origins:          "CARDSCAN_CORS_ORIGINS",
	AllowedMethods:   "CARDSCAN_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CARDSCAN_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CARDSCAN_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CARDSCAN_CORS_MAX_AGE",
}

// APIConfig holds JSON API routing, CORS, and OpenAPI metadata settings.
type APIConfig struct {
	BasePath string                `toml:"base_path"`
	CORS     middleware.CORSConfig `toml:"cors"`
	OpenAPI  OpenAPIConfig         `toml:"openapi"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and OpenAPI configs.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if err := validateBasePath(c.BasePath); err != nil {
		return err
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

// AppConfig holds settings for the HTML front end.
type AppConfig struct {
	BasePath string `toml:"base_path"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AppConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/app"
	}
	if v := os.Getenv(EnvAppBasePath); v != "" {
		c.BasePath = v
	}
	return validateBasePath(c.BasePath)
}

// Merge overwrites non-zero fields from overlay.
func (c *AppConfig) Merge(overlay *AppConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
}

// modules mount at a single path segment
func validateBasePath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("base_path must start with /: %s", p)
	}
	if p == "/" || strings.Contains(p[1:], "/") {
		return fmt.Errorf("base_path must be a single path segment: %s", p)
	}
	return nil
}
