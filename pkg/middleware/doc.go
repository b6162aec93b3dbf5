// Package middleware provides the observability middleware for pagekit
// applications.
//
// This package includes:
//
//   - Prometheus metrics labelled by matched route pattern
//   - OpenTelemetry request tracing
//   - Structured request logging with log/slog
//
// # Prometheus Metrics
//
// The collectors are registered on the registry given with WithRegistry
// (default: prometheus.DefaultRegisterer):
//
//   - pagekit_http_requests_total: requests by route pattern and status
//   - pagekit_http_request_duration_seconds: request duration histogram
//   - pagekit_bridge_calls_total: bridge calls by function and status
//   - pagekit_route_table_entries: entries in the active route table
//   - pagekit_route_table_reloads_total: route table reloads by result
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//
// Labels always use the route pattern (for example "/blog/:slug"), never the
// raw request path, so cardinality is bounded by the size of the route table.
//
// # OpenTelemetry
//
// Tracing starts one server span per request from the global tracer
// provider. Configure the provider in main() before serving:
//
//	otel.SetTracerProvider(tp)
//	r.Use(middleware.Tracing())
package middleware
