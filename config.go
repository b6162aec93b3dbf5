package pagekit

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pagekit-dev/pagekit/pkg/bridge"
	"github.com/pagekit-dev/pagekit/pkg/pages"
)

// Mode selects how matched routes are served.
type Mode string

const (
	// ModeSSR renders page templates on the server.
	ModeSSR Mode = "ssr"

	// ModeSPA serves the single page application index for every known
	// route. Unknown routes still get the index with status 404.
	ModeSPA Mode = "spa"
)

// Config is the main application configuration.
type Config struct {
	// Pages configures page discovery.
	Pages PagesConfig

	// Mode selects server rendering or the SPA shell. Default: ModeSSR.
	Mode Mode

	// Static configures static file serving.
	Static StaticConfig

	// Bridge configures the function bridge.
	Bridge BridgeConfig

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig

	// Tracing enables OpenTelemetry request spans through the global
	// tracer provider.
	Tracing bool

	// DevMode mounts the hot reload websocket and injects the reload
	// client into every HTML response.
	DevMode bool

	// Addr is the address Run listens on. Default: "localhost:3000".
	Addr string

	// ShutdownTimeout bounds graceful shutdown in Run. Default: 10s.
	ShutdownTimeout time.Duration

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// PagesConfig configures page discovery.
type PagesConfig struct {
	// Source yields the page files. Required.
	Source pages.Source

	// Options are the discovery options (root, extension, patterns).
	Options pages.Options
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// FS holds the static files. Nil disables static serving.
	FS fs.FS

	// Prefix is the URL path prefix for static files. Default: "/assets".
	Prefix string

	// Index is the SPA index document inside FS. Default: "index.html".
	Index string

	// CacheControl determines caching behavior for static files.
	// Default: CacheControlNone.
	CacheControl CacheControlStrategy

	// Headers are custom headers to add to all static file responses.
	Headers map[string]string
}

// CacheControlStrategy defines how static files are cached.
type CacheControlStrategy int

const (
	// CacheControlNone disables caching, for development.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction caches fingerprinted files for a year and
	// everything else for an hour.
	CacheControlProduction
)

// BridgeConfig configures the function bridge.
type BridgeConfig struct {
	// Prefix is the URL prefix of bridge calls. Default: "/api".
	Prefix string

	// MaxBodyBytes limits request bodies. Default: 1 MiB.
	MaxBodyBytes int64

	// Registry holds the functions. A new registry is created when nil.
	Registry *bridge.Registry
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns on collection and the metrics endpoint.
	Enabled bool

	// Path is the metrics endpoint. Default: "/metrics".
	Path string

	// Registry receives the collectors and backs the endpoint.
	// A new registry is created when nil.
	Registry *prometheus.Registry
}

// withDefaults returns a copy of cfg with empty fields set.
func (cfg Config) withDefaults() Config {
	if cfg.Mode == "" {
		cfg.Mode = ModeSSR
	}
	if cfg.Static.Prefix == "" {
		cfg.Static.Prefix = "/assets"
	}
	if cfg.Static.Index == "" {
		cfg.Static.Index = "index.html"
	}
	if cfg.Bridge.Prefix == "" {
		cfg.Bridge.Prefix = "/api"
	}
	if cfg.Bridge.MaxBodyBytes <= 0 {
		cfg.Bridge.MaxBodyBytes = bridge.DefaultMaxBodyBytes
	}
	if cfg.Bridge.Registry == nil {
		cfg.Bridge.Registry = bridge.NewRegistry()
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Registry == nil {
		cfg.Metrics.Registry = prometheus.NewRegistry()
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:3000"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
