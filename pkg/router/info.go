package router

import "context"

// RouteInfo records which route served a request. Middleware that needs the
// matched pattern (for metric labels or span names) installs one with
// WithRouteInfo before calling the router; the router fills it in.
type RouteInfo struct {
	// Pattern is the matched pattern, empty when nothing matched.
	Pattern string
}

type routeInfoKey struct{}

// WithRouteInfo returns a context carrying an empty RouteInfo.
func WithRouteInfo(ctx context.Context) (context.Context, *RouteInfo) {
	info := &RouteInfo{}
	return context.WithValue(ctx, routeInfoKey{}, info), info
}

// RouteInfoFrom returns the RouteInfo installed in ctx, or nil.
func RouteInfoFrom(ctx context.Context) *RouteInfo {
	info, _ := ctx.Value(routeInfoKey{}).(*RouteInfo)
	return info
}
