package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/consolenav/pkg/navigator"
	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/search"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "consolenav").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
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

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "consolenav",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// unmatched labels navigations that failed before a route matched.
const unmatched = "unmatched"

// Metrics holds the navigation metrics of one registry.
type Metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	redirectHops       prometheus.Histogram
	activeStreams      prometheus.Gauge
	supersededTotal    prometheus.Counter
}

// NewMetrics registers the navigation metrics:
//
//   - consolenav_navigations_total: navigations by route and final state
//   - consolenav_navigation_duration_seconds: navigation duration by route
//   - consolenav_navigation_errors_total: failures by route and error type
//   - consolenav_redirect_hops: redirects followed per navigation
//   - consolenav_active_streams: open live navigation streams
//   - consolenav_superseded_navigations_total: results dropped for a newer one
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by route and final state",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "state"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigations by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "error_type"}),

		redirectHops: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirect_hops",
			Help:        "Number of redirects followed per navigation",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.LinearBuckets(0, 1, 11),
		}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_streams",
			Help:        "Number of open live navigation streams",
			ConstLabels: config.ConstLabels,
		}),

		supersededTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "superseded_navigations_total",
			Help:        "Total number of navigation results dropped in favour of a newer navigation",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware recording navigation metrics.
//
//	reg := prometheus.NewRegistry()
//	nav, _ := navigator.New(tree, navigator.WithMiddleware(
//	    middleware.Prometheus(middleware.WithRegistry(reg)),
//	))
func Prometheus(opts ...MetricsOption) navigator.Middleware {
	return NewMetrics(opts...).Middleware()
}

// Middleware returns the navigation middleware recording into m.
func (m *Metrics) Middleware() navigator.Middleware {
	return navigator.MiddlewareFunc(func(nav *navigator.Navigation, next func() error) error {
		start := time.Now()
		err := next()

		route := nav.Route
		if route == "" {
			route = unmatched
		}

		m.navigationDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.navigationsTotal.WithLabelValues(route, nav.State.String()).Inc()
		m.redirectHops.Observe(float64(len(nav.Redirects)))
		if nav.Failed() {
			m.navigationErrors.WithLabelValues(route, categorizeError(nav.Err)).Inc()
		}
		return err
	})
}

// StreamOpened records a live navigation stream being opened.
func (m *Metrics) StreamOpened() { m.activeStreams.Inc() }

// StreamClosed records a live navigation stream being closed.
func (m *Metrics) StreamClosed() { m.activeStreams.Dec() }

// Superseded records a navigation result dropped for a newer one.
func (m *Metrics) Superseded() { m.supersededTotal.Inc() }

// categorizeError maps a navigation failure to a low-cardinality label.
func categorizeError(err error) string {
	var (
		validation *search.ValidationError
		loop       *router.RedirectLoopError
		redirect   *router.RedirectError
		notFound   *router.NotFoundError
		invalid    *router.InvalidURLError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &loop):
		return "redirect_loop"
	case errors.As(err, &redirect):
		return "redirect"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalid):
		return "invalid_url"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, navigator.ErrAborted):
		return "aborted"
	default:
		return "internal"
	}
}
