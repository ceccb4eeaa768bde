package detection

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds detection service connection parameters.
type Config struct {
	BaseURL        string `toml:"base_url"`
	DetectPath     string `toml:"detect_path"`
	HealthPath     string `toml:"health_path"`
	RequestTimeout string `toml:"request_timeout"`
	HealthTimeout  string `toml:"health_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL        string
	DetectPath     string
	HealthPath     string
	RequestTimeout string
	HealthTimeout  string
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
// Zero means requests are never timed out by the client.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// HealthTimeoutDuration returns HealthTimeout as a time.Duration. Health
// checks are always bounded, unlike detect requests.
func (c *Config) HealthTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.HealthTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.DetectPath != "" {
		c.DetectPath = overlay.DetectPath
	}
	if overlay.HealthPath != "" {
		c.HealthPath = overlay.HealthPath
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.HealthTimeout != "" {
		c.HealthTimeout = overlay.HealthTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.DetectPath == "" {
		c.DetectPath = "/detect"
	}
	if c.HealthPath == "" {
		c.HealthPath = "/health"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "0s"
	}
	if c.HealthTimeout == "" {
		c.HealthTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.DetectPath != "" {
		if v := os.Getenv(env.DetectPath); v != "" {
			c.DetectPath = v
		}
	}
	if env.HealthPath != "" {
		if v := os.Getenv(env.HealthPath); v != "" {
			c.HealthPath = v
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
	if env.HealthTimeout != "" {
		if v := os.Getenv(env.HealthTimeout); v != "" {
			c.HealthTimeout = v
		}
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url scheme: %q", u.Scheme)
	}
	if !strings.HasPrefix(c.DetectPath, "/") {
		return fmt.Errorf("detect_path must start with /: %s", c.DetectPath)
	}
	if !strings.HasPrefix(c.HealthPath, "/") {
		return fmt.Errorf("health_path must start with /: %s", c.HealthPath)
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("request_timeout cannot be negative: %s", c.RequestTimeout)
	}
	d, err = time.ParseDuration(c.HealthTimeout)
	if err != nil {
		return fmt.Errorf("invalid health_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("health_timeout must be positive: %s", c.HealthTimeout)
	}
	return nil
}
