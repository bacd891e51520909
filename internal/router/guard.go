package router

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

// SessionChecker is what the guard needs to know about the session.
type SessionChecker interface {
	Expired() bool
	HasStaleToken() bool
}

// Navigation is the outcome of resolving a path. An empty Redirect means
// the navigation proceeds to Route.
type Navigation struct {
	Route               Route
	Redirect            string
	SessionNotification bool
}

func (n Navigation) Proceed() bool {
	return n.Redirect == ""
}

// Guard matches paths against the route table and sends navigation to a
// protected page back to the login page once the session has expired.
type Guard struct {
	matcher *mux.Router
	routes  map[*mux.Route]Route
	checker SessionChecker
	logger  *slog.Logger
}

func NewGuard(routes []Route, checker SessionChecker, logger *slog.Logger) *Guard {
	g := &Guard{
		matcher: mux.NewRouter(),
		routes:  make(map[*mux.Route]Route),
		checker: checker,
		logger:  logger,
	}

	for _, route := range routes {
		g.routes[g.matcher.Path(route.Path).Name(route.Name)] = route
		for _, alias := range route.Aliases {
			g.routes[g.matcher.Path(alias)] = route
		}
	}

	// Catch-all, registered last so every real page wins.
	g.routes[g.matcher.PathPrefix("/").Name(NotFoundName)] = Route{Name: NotFoundName}

	return g
}

// Match returns the route serving path. Matching ignores letter case and
// one trailing slash; every path in the table is lower case.
func (g *Guard) Match(path string) Route {
	lookup := strings.ToLower(path)
	if len(lookup) > 1 {
		lookup = strings.TrimSuffix(lookup, "/")
	}
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: lookup}}

	var match mux.RouteMatch
	if g.matcher.Match(req, &match) {
		if route, ok := g.routes[match.Route]; ok {
			route.Path = path
			return route
		}
	}
	return Route{Name: NotFoundName, Path: path}
}

// Resolve decides where a navigation to path ends up.
func (g *Guard) Resolve(path string) Navigation {
	route := g.Match(path)

	if route.RequiresAuth && g.checker.Expired() {
		// The stale token is left in place; only the expiry path is consulted here.
		if g.checker.HasStaleToken() {
			g.logger.Warn("Redirecting with stale access token still stored", "path", path)
		}
		g.logger.Info("Session expired, redirecting to login", "path", path, "view", route.Name)
		return Navigation{
			Route:               route,
			Redirect:            LoginPath,
			SessionNotification: true,
		}
	}

	return Navigation{Route: route}
}
