package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/cardscan/pkg/formatting"
)

const (
	EnvClientMaxFileSize    = "CARDSCAN_CLIENT_MAX_FILE_SIZE"
	EnvClientNotifyDuration = "CARDSCAN_CLIENT_NOTIFY_DURATION"
)

// ClientConfig holds the upload limit and notification display time.
type ClientConfig struct {
	MaxFileSize    string `toml:"max_file_size"`
	NotifyDuration string `toml:"notify_duration"`
}

// MaxFileSizeBytes returns MaxFileSize in bytes.
func (c *ClientConfig) MaxFileSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxFileSize)
	if err != nil {
		return 16 * 1024 * 1024
	}
	return size
}

// NotifyDurationValue returns NotifyDuration as a time.Duration.
func (c *ClientConfig) NotifyDurationValue() time.Duration {
	d, _ := time.ParseDuration(c.NotifyDuration)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClientConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClientConfig) Merge(overlay *ClientConfig) {
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}
	if overlay.NotifyDuration != "" {
		c.NotifyDuration = overlay.NotifyDuration
	}
}

func (c *ClientConfig) loadDefaults() {
	if c.MaxFileSize == "" {
		c.MaxFileSize = "16MB"
	}
	if c.NotifyDuration == "" {
		c.NotifyDuration = "3s"
	}
}

func (c *ClientConfig) loadEnv() {
	if v := os.Getenv(EnvClientMaxFileSize); v != "" {
		c.MaxFileSize = v
	}
	if v := os.Getenv(EnvClientNotifyDuration); v != "" {
		c.NotifyDuration = v
	}
}

func (c *ClientConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxFileSize)
	if err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_file_size must be positive: %s", c.MaxFileSize)
	}
	d, err := time.ParseDuration(c.NotifyDuration)
	if err != nil {
		return fmt.Errorf("invalid notify_duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("notify_duration must be positive: %s", c.NotifyDuration)
	}
	return nil
}
