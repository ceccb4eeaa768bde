package api

import (
	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/internal/infrastructure"
	"github.com/JaimeStill/cardscan/pkg/middleware"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	MaxFileSize int64
	CORS        *middleware.CORSConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		MaxFileSize:    cfg.Client.MaxFileSizeBytes(),
		CORS:           &cfg.API.CORS,
	}
}
