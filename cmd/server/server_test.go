package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/cardscan/internal/config"
	"github.com/JaimeStill/cardscan/pkg/middleware"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	detector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status": "healthy", "model": "test"}`)
	}))
	t.Cleanup(detector.Close)

	cfg := &config.Config{}
	cfg.Detection.BaseURL = detector.URL
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("config: %v", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	t.Cleanup(func() { srv.Shutdown(5 * time.Second) })
	return srv
}

func serve(srv *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestRootRedirects(t *testing.T) {
	rec := serve(newTestServer(t), "/")

	if rec.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/app/" {
		t.Errorf("location: got %q", loc)
	}
}

func TestHealthz(t *testing.T) {
	rec := serve(newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("responses should carry a request id")
	}
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t)

	if rec := serve(srv, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before startup: got %d, want 503", rec.Code)
	}

	srv.infra.Start()
	if err := srv.infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}

	if rec := serve(srv, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("after startup: got %d, want 200", rec.Code)
	}
}

func TestModulesMounted(t *testing.T) {
	srv := newTestServer(t)

	if rec := serve(srv, "/app/"); rec.Code != http.StatusOK {
		t.Errorf("app: got %d", rec.Code)
	}
	if rec := serve(srv, "/api/state"); rec.Code != http.StatusOK {
		t.Errorf("api: got %d", rec.Code)
	}
	if rec := serve(srv, "/elsewhere"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown: got %d, want 404", rec.Code)
	}
}
