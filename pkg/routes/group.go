package routes

import (
	"net/http"

	"github.com/JaimeStill/cardscan/pkg/openapi"
)

// Mux is the registration surface of http.ServeMux.
type Mux interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// Group shares a path prefix across routes and nested groups.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Patterns returns the full "METHOD /path" patterns of g in registration order.
func (g Group) Patterns() []string {
	var out []string
	g.walk("", func(pattern string, _ http.HandlerFunc) {
		out = append(out, pattern)
	})
	return out
}

// AddToSpec documents every route of g that carries an operation, with
// paths rooted at basePath.
func (g Group) AddToSpec(basePath string, spec *openapi.Spec) {
	g.each(basePath, func(prefix string, r Route) {
		if r.OpenAPI != nil {
			spec.AddOperation(r.Method, prefix+r.Pattern, r.OpenAPI)
		}
	})
}

// Register adds every route in groups to mux.
func Register(mux Mux, groups ...Group) {
	for _, g := range groups {
		g.walk("", func(pattern string, h http.HandlerFunc) {
			mux.HandleFunc(pattern, h)
		})
	}
}

func (g Group) walk(parent string, fn func(pattern string, h http.HandlerFunc)) {
	g.each(parent, func(prefix string, r Route) {
		fn(r.Method+" "+prefix+r.Pattern, r.Handler)
	})
}

func (g Group) each(parent string, fn func(prefix string, r Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(prefix, r)
	}
	for _, child := range g.Children {
		child.each(prefix, fn)
	}
}
