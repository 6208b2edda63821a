package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/consolenav/pkg/navigator"
)

// Default tracer name.
const defaultTracerName = "consolenav"

// spanName is the name of every navigation span. URLs go into attributes
// to keep span names low-cardinality.
const spanName = "consolenav.navigate"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "consolenav").
	TracerName string

	// TracerProvider provides the tracer. Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// IncludeSearch records the validated search params as attributes.
	// Disabled by default: queries may carry user input.
	IncludeSearch bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(nav *navigator.Navigation) bool

	// AttributeExtractor adds custom attributes once the navigation ends.
	AttributeExtractor func(nav *navigator.Navigation) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeSearch enables recording search params on spans.
func WithIncludeSearch(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeSearch = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *navigator.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *navigator.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every navigation.
//
// The span starts before matching and ends once the navigation is Resolved
// or Failed. It is stored in the navigation's context, so middleware and
// redirect funcs running later can reach it with trace.SpanFromContext.
//
// The tracer comes from the global provider unless WithTracerProvider is
// used. Configure it in main() before navigating:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) navigator.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}
	tracer := config.TracerProvider.Tracer(config.TracerName)

	return navigator.MiddlewareFunc(func(nav *navigator.Navigation, next func() error) error {
		if config.Filter != nil && !config.Filter(nav) {
			return next()
		}

		ctx, span := tracer.Start(nav.Context(), spanName,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("consolenav.id", nav.ID),
				attribute.String("consolenav.url", nav.URL),
			),
		)
		defer span.End()
		nav.SetContext(ctx)

		err := next()

		attrs := []attribute.KeyValue{
			attribute.String("consolenav.state", nav.State.String()),
			attribute.Int("consolenav.redirects", len(nav.Redirects)),
		}
		if nav.Route != "" {
			attrs = append(attrs, attribute.String("consolenav.route", nav.Route))
		}
		if nav.Location != "" {
			attrs = append(attrs, attribute.String("consolenav.location", nav.Location))
		}
		if config.IncludeSearch && nav.Search != nil {
			attrs = append(attrs, attribute.String("consolenav.search", nav.Search.Encode()))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(nav)...)
		}
		span.SetAttributes(attrs...)

		if nav.Failed() {
			span.RecordError(nav.Err)
			span.SetStatus(codes.Error, nav.Error)
			if nav.ErrorCode != "" {
				span.SetAttributes(attribute.String("consolenav.error_code", nav.ErrorCode))
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}

// SpanFromNavigation returns the navigation's span, or nil when it is not
// being traced.
func SpanFromNavigation(nav *navigator.Navigation) trace.Span {
	span := trace.SpanFromContext(nav.Context())
	if !span.SpanContext().IsValid() && !span.IsRecording() {
		return nil
	}
	return span
}
