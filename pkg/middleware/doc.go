// Package middleware provides navigation middleware for observability.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//   - Structured logging middleware
//
// Middleware wraps a whole navigation, so each one observes the final state
// once matching, redirects and validation are done:
//
//	reg := prometheus.NewRegistry()
//	nav, err := navigator.New(tree, navigator.WithMiddleware(
//	    middleware.Logging(logger),
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(middleware.WithRegistry(reg)),
//	))
//
// # OpenTelemetry
//
// One span per navigation, named "consolenav.navigate", carrying the URL,
// matched route, final state and redirect count. The span is placed in the
// navigation's context.
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("console"),
//	    middleware.WithNavigationFilter(func(nav *navigator.Navigation) bool {
//	        return nav.URL != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// Labels use the route pattern, never the raw URL, so cardinality is bounded
// by the number of declared routes:
//   - consolenav_navigations_total{route, state}
//   - consolenav_navigation_duration_seconds{route}
//   - consolenav_navigation_errors_total{route, error_type}
//   - consolenav_redirect_hops
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
