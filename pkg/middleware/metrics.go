package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pagekit-dev/pagekit/pkg/bridge"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metric namespace (default: "pagekit").
	Namespace string

	// Subsystem is the metric subsystem (default: "").
	Subsystem string

	// ConstLabels are labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registerer to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = ns
	}
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets custom histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets a custom Prometheus registerer.
func WithRegistry(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "pagekit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the pagekit collectors. Create one per registry; registering
// the same collectors twice on one registry panics.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bridgeCalls     *prometheus.CounterVec
	bridgeDuration  *prometheus.HistogramVec
	tableEntries    prometheus.Gauge
	tableReloads    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "http_requests_total",
				Help:        "Total HTTP requests by route pattern and status code",
				ConstLabels: config.ConstLabels,
			},
			[]string{"route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds by route pattern",
				ConstLabels: config.ConstLabels,
				Buckets:     config.Buckets,
			},
			[]string{"route"},
		),
		bridgeCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "bridge_calls_total",
				Help:        "Total bridge function calls by function and status code",
				ConstLabels: config.ConstLabels,
			},
			[]string{"function", "status"},
		),
		bridgeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "bridge_call_duration_seconds",
				Help:        "Bridge function call duration in seconds",
				ConstLabels: config.ConstLabels,
				Buckets:     config.Buckets,
			},
			[]string{"function"},
		),
		tableEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "route_table_entries",
				Help:        "Number of entries in the active route table",
				ConstLabels: config.ConstLabels,
			},
		),
		tableReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "route_table_reloads_total",
				Help:        "Route table reloads by result",
				ConstLabels: config.ConstLabels,
			},
			[]string{"result"},
		),
	}
}

// Handler returns middleware that counts and times each request under the
// pattern of the route that served it.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, info := withRouteInfo(r)
		rec := newResponseRecorder(w)
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := routeLabel(r, info)
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

// BridgeObserver returns an observer for bridge.HandlerConfig.
func (m *Metrics) BridgeObserver() bridge.Observer {
	return func(function string, status int, elapsed time.Duration) {
		m.bridgeCalls.WithLabelValues(function, strconv.Itoa(status)).Inc()
		m.bridgeDuration.WithLabelValues(function).Observe(elapsed.Seconds())
	}
}

// SetEntries records the size of the active route table.
func (m *Metrics) SetEntries(n int) {
	m.tableEntries.Set(float64(n))
}

// ObserveReload records the outcome of a route table reload.
func (m *Metrics) ObserveReload(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.tableReloads.WithLabelValues(result).Inc()
}
