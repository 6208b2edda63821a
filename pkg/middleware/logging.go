package middleware

import (
	"log/slog"
	"time"

	"github.com/vango-dev/consolenav/pkg/navigator"
)

// Logging creates middleware that logs every finished navigation: resolved
// navigations at Info, failed ones at Warn with the error and its code.
// A nil logger uses slog.Default().
func Logging(logger *slog.Logger) navigator.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return navigator.MiddlewareFunc(func(nav *navigator.Navigation, next func() error) error {
		start := time.Now()
		err := next()

		attrs := []any{
			"id", nav.ID,
			"url", nav.URL,
			"state", nav.State.String(),
			"duration", time.Since(start),
		}
		if nav.Route != "" {
			attrs = append(attrs, "route", nav.Route)
		}
		if len(nav.Redirects) > 0 {
			attrs = append(attrs, "redirects", len(nav.Redirects), "location", nav.Location)
		}

		if nav.Failed() {
			attrs = append(attrs, "error", nav.Error)
			if nav.ErrorCode != "" {
				attrs = append(attrs, "code", nav.ErrorCode)
			}
			logger.WarnContext(nav.Context(), "navigation failed", attrs...)
		} else {
			logger.InfoContext(nav.Context(), "navigation resolved", attrs...)
		}
		return err
	})
}
