// Package app serves the HTML front end: an upload form with preview, the
// detect and remove buttons, the rendered results and the current
// notification. Every command posts back and redirects to the page; while a
// detection is in flight the page refreshes itself.
package app

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/internal/infrastructure"
	"github.com/JaimeStill/cardscan/pkg/middleware"
	"github.com/JaimeStill/cardscan/pkg/module"
	"github.com/JaimeStill/cardscan/pkg/routes"
	"github.com/JaimeStill/cardscan/pkg/web"
)

//go:embed templates static
var assets embed.FS

const layout = "layout"

var (
	indexView    = web.ViewDef{Template: "index.html", Title: "Credit Card Detection"}
	notFoundView = web.ViewDef{Template: "notfound.html", Title: "Not Found"}
)

var funcs = template.FuncMap{
	// previews are built by the intake from validated image types
	"dataURI": func(s string) template.URL { return template.URL(s) },
}

// NewModule creates the front-end module mounted at cfg.App.BasePath.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	ts, err := web.NewTemplateSet(
		assets,
		"templates/*.html",
		"templates/views",
		cfg.App.BasePath,
		funcs,
		[]web.ViewDef{indexView, notFoundView},
	)
	if err != nil {
		return nil, fmt.Errorf("app templates: %w", err)
	}

	logger := infra.Logger.With("module", "app")
	h := &handler{
		templates:   ts,
		controller:  infra.Controller,
		notifier:    infra.Notifier,
		maxFileSize: cfg.Client.MaxFileSizeBytes(),
		logger:      logger.With("handler", "page"),
	}

	router := web.NewRouter()
	routes.Register(router, h.routes())
	router.SetFallback(ts.ErrorHandler(layout, notFoundView, http.StatusNotFound))

	m := module.New(cfg.App.BasePath, router)
	m.Use(middleware.Logger(logger))
	return m, nil
}

func staticRoutes() routes.Group {
	return routes.Group{
		Prefix: "/static",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{file...}", Handler: web.StaticServer(assets, "static", "/static")},
		},
	}
}

func (h *handler) routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{$}", Handler: h.page},
			{Method: "POST", Pattern: "/select", Handler: h.selectFile},
			{Method: "POST", Pattern: "/clear", Handler: h.clear},
			{Method: "POST", Pattern: "/submit", Handler: h.submit},
		},
		Children: []routes.Group{staticRoutes()},
	}
}

