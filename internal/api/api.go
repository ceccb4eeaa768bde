// Package api exposes the client state and its commands as a JSON API.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/internal/infrastructure"
	"github.com/JaimeStill/cardscan/pkg/middleware"
	"github.com/JaimeStill/cardscan/pkg/module"
	"github.com/JaimeStill/cardscan/pkg/openapi"
	"github.com/JaimeStill/cardscan/pkg/routes"
)

// NewModule creates the API module mounted at cfg.API.BasePath. The
// OpenAPI document for its routes is served at /openapi.json.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	h := NewHandler(runtime)

	spec := h.Spec(&cfg.API.OpenAPI, cfg.Version, cfg.API.BasePath)
	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi: %w", err)
	}

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	return m, nil
}
