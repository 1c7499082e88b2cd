package gateway

import (
	"sort"
	"strings"

	"github.com/sanctumfront/internal/apipaths"
)

// Route maps an inbound path prefix onto a backend path
type Route struct {
	Prefix  string `yaml:"prefix"`
	Rewrite string `yaml:"rewrite"`
	// Exact matches the prefix only as the whole path
	Exact bool `yaml:"exact"`
	// JSONAPI forces the Accept and X-Requested-With headers Sanctum expects
	JSONAPI bool `yaml:"json_api"`
}

// DefaultRoutes is the routing table used when no routes file is configured
func DefaultRoutes() []Route {
	return []Route{
		{Prefix: apipaths.ProxyAlias, Rewrite: "", JSONAPI: true},
		{Prefix: apipaths.API, Rewrite: apipaths.API},
		{Prefix: apipaths.Sanctum, Rewrite: apipaths.Sanctum},
		{Prefix: apipaths.Login, Rewrite: apipaths.Login, Exact: true},
		{Prefix: apipaths.Logout, Rewrite: apipaths.Logout, Exact: true},
	}
}

// matches reports whether path falls under the route. Prefixes match on a segment boundary.
func (r Route) matches(path string) bool {
	if r.Exact {
		return path == r.Prefix
	}
	if path == r.Prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(r.Prefix, "/")+"/")
}

// Target returns the backend path for an inbound path the route matches.
// An empty result is treated as the root.
func (r Route) Target(path string) string {
	out := strings.TrimSuffix(r.Rewrite, "/") + strings.TrimPrefix(path, r.Prefix)
	if out == "" {
		return "/"
	}
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out
}

// Router resolves inbound paths against the route table
type Router struct {
	routes []Route
}

// NewRouter creates a router over routes. Longer prefixes are tried first.
func NewRouter(routes []Route) *Router {
	sorted := append([]Route(nil), routes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Router{routes: sorted}
}

// Match returns the route for path and whether one matched
func (r *Router) Match(path string) (Route, bool) {
	for _, route := range r.routes {
		if route.matches(path) {
			return route, true
		}
	}
	return Route{}, false
}

// Routes returns the table in match order
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}
