package main

import (
	"net/http"
	"time"

	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/internal/infrastructure"
	"github.com/JaimeStill/cardscan/pkg/middleware"
)

// Server wires infrastructure, modules and the HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	handler http.Handler
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra := infrastructure.New(cfg, infrastructure.Options{})

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, cfg)
	modules.Mount(router)

	stack := middleware.New()
	stack.Use(middleware.Recover(infra.Logger))
	stack.Use(middleware.RequestIDs())
	handler := stack.Apply(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"detection", cfg.Detection.BaseURL,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		handler: handler,
		http:    newHTTPServer(cfg, handler, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")
	s.infra.Start()

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.infra.Logger.Warn("started with warnings", "error", err)
			return
		}
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
