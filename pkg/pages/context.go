package pages

import "context"

type ctxKey int

const (
	paramsKey ctxKey = iota
	pathKey
)

// WithRequest returns a context carrying the request path and the route
// parameters matched for it.
func WithRequest(ctx context.Context, path string, params map[string]string) context.Context {
	ctx = context.WithValue(ctx, pathKey, path)
	return context.WithValue(ctx, paramsKey, params)
}

// ParamsFrom returns the route parameters stored in ctx. The result is never nil.
func ParamsFrom(ctx context.Context) map[string]string {
	if p, ok := ctx.Value(paramsKey).(map[string]string); ok && p != nil {
		return p
	}
	return map[string]string{}
}

// PathFrom returns the request path stored in ctx.
func PathFrom(ctx context.Context) string {
	p, _ := ctx.Value(pathKey).(string)
	return p
}
