package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/cardscan/pkg/module"
)

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		prefix string
		valid  bool
	}{
		{"/api", true},
		{"/app", true},
		{"", false},
		{"/", false},
		{"api", false},
		{"/api/v1", false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if err := module.ValidatePrefix(tt.prefix); (err == nil) != tt.valid {
				t.Errorf("got %v, valid %v", err, tt.valid)
			}
		})
	}
}

func TestNewInvalidPrefixPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid prefix")
		}
	}()
	module.New("/api/v1", http.NewServeMux())
}

func pathRecorder(pattern string, got *string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		*got = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestModuleStripsPrefix(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    string
	}{
		{"nested", "GET /state", "/api/state", "/state"},
		{"root", "GET /{$}", "/api", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			m := module.New("/api", pathRecorder(tt.pattern, &got))

			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rec.Code)
			}
			if got != tt.want {
				t.Errorf("inner path: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	var got string
	m := module.New("/api", pathRecorder("GET /", &got))

	var called bool
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	})

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if !called {
		t.Error("module middleware should have been called")
	}
}

func TestRouterDispatch(t *testing.T) {
	var apiPath, appPath string
	router := module.NewRouter()
	router.Mount(module.New("/api", pathRecorder("/", &apiPath)))
	router.Mount(module.New("/app", pathRecorder("/", &appPath)))

	var native bool
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		native = true
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/state", nil))
	if apiPath != "/state" {
		t.Errorf("api path: got %q", apiPath)
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/app/", nil))
	if appPath != "/" {
		t.Errorf("app root with trailing slash: got %q", appPath)
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))
	if !native {
		t.Error("native handler not reached")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/apix", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unmatched prefix: got %d, want 404", rec.Code)
	}
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate mount")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
