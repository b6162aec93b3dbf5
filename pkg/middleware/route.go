package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekit-dev/pagekit/pkg/router"
)

// unmatchedRoute labels requests that no route claimed.
const unmatchedRoute = "unmatched"

// withRouteInfo installs a RouteInfo on the request unless an outer
// middleware already did.
func withRouteInfo(r *http.Request) (*http.Request, *router.RouteInfo) {
	if info := router.RouteInfoFrom(r.Context()); info != nil {
		return r, info
	}
	ctx, info := router.WithRouteInfo(r.Context())
	return r.WithContext(ctx), info
}

// routeLabel returns the pattern that served r. The page router reports
// through info; handlers mounted directly on chi report through chi's
// route context.
func routeLabel(r *http.Request, info *router.RouteInfo) string {
	if info != nil && info.Pattern != "" {
		return info.Pattern
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" && p != "/*" {
			return p
		}
	}
	return unmatchedRoute
}
