package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	EnvOpenAPITitle       = "CARDSCAN_OPENAPI_TITLE"
	EnvOpenAPIDescription = "CARDSCAN_OPENAPI_DESCRIPTION"
	EnvOpenAPIServers     = "CARDSCAN_OPENAPI_SERVERS"
)

// OpenAPIConfig holds the metadata published in /api/openapi.json.
// Servers lists absolute base URLs the document advertises; when empty,
// clients resolve paths against the URL they fetched the document from.
type OpenAPIConfig struct {
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Servers     []string `toml:"servers"`
}

func (c *OpenAPIConfig) Finalize() error {
	if c.Title == "" {
		c.Title = "Cardscan API"
	}
	if c.Description == "" {
		c.Description = "Select an image, submit it for credit card detection, and read back the rendered results."
	}

	if v := os.Getenv(EnvOpenAPITitle); v != "" {
		c.Title = v
	}
	if v := os.Getenv(EnvOpenAPIDescription); v != "" {
		c.Description = v
	}
	if v := os.Getenv(EnvOpenAPIServers); v != "" {
		c.Servers = nil
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Servers = append(c.Servers, s)
			}
		}
	}

	for _, s := range c.Servers {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server must be an absolute URL: %q", s)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *OpenAPIConfig) Merge(overlay *OpenAPIConfig) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if len(overlay.Servers) > 0 {
		c.Servers = overlay.Servers
	}
}
