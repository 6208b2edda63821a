package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/consolenav/pkg/navigator"
	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/search"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestNavigator(t *testing.T, mw ...navigator.Middleware) *navigator.Navigator {
	t.Helper()
	tree, err := router.Build([]router.Route{
		{Path: "/", Component: "RootLayout"},
		{Path: "/settings", Parent: "/", Component: "Settings", Breadcrumb: router.Label("Settings")},
		{Path: "/deploy", Parent: "/", Redirect: &router.Redirect{To: "/settings", PreserveSearch: true}},
		{Path: "/apps", Parent: "/", Component: "Apps",
			Search: search.MustSchema(search.Int("page").Optional())},
		{Path: "/loop", Parent: "/", Redirect: &router.Redirect{To: "/loop"}},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	nv, err := navigator.New(tree, navigator.WithMiddleware(mw...))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return nv
}

// =============================================================================
// Logging Tests
// =============================================================================

func TestLoggingResolved(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	nv := newTestNavigator(t, Logging(logger))

	nav := nv.Navigate(context.Background(), "/deploy?x=1")
	if nav.State != navigator.StateResolved {
		t.Fatalf("State = %s, want resolved", nav.State)
	}

	out := buf.String()
	for _, want := range []string{
		"level=INFO",
		`msg="navigation resolved"`,
		"url=\"/deploy?x=1\"",
		"route=/settings",
		"redirects=1",
		"location=\"/settings?x=1\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoggingFailed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	nv := newTestNavigator(t, Logging(logger))

	nv.Navigate(context.Background(), "/apps?page=abc")

	out := buf.String()
	for _, want := range []string{
		"level=WARN",
		`msg="navigation failed"`,
		"state=failed",
		"code=E220",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoggingNilLogger(t *testing.T) {
	nv := newTestNavigator(t, Logging(nil))
	if nav := nv.Navigate(context.Background(), "/settings"); nav.State != navigator.StateResolved {
		t.Errorf("State = %s, want resolved", nav.State)
	}
}

func TestLoggingAndMetricsSeeAbort(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	abort := navigator.MiddlewareFunc(func(*navigator.Navigation, func() error) error {
		return nil
	})
	nv := newTestNavigator(t, Logging(logger), m.Middleware(), abort)

	nav := nv.Navigate(context.Background(), "/settings")
	if nav.State != navigator.StateFailed || nav.ErrorCode != "E214" {
		t.Fatalf("State = %s code = %q, want failed E214", nav.State, nav.ErrorCode)
	}

	out := buf.String()
	for _, want := range []string{
		"level=WARN",
		`msg="navigation failed"`,
		"state=failed",
		"code=E214",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "navigation resolved") {
		t.Errorf("aborted navigation logged as resolved:\n%s", out)
	}

	if got := testutil.ToFloat64(m.navigationsTotal.WithLabelValues(unmatched, "failed")); got != 1 {
		t.Errorf("failed navigations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.navigationsTotal.WithLabelValues(unmatched, "idle")); got != 0 {
		t.Errorf("idle navigations = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.navigationErrors.WithLabelValues(unmatched, "aborted")); got != 1 {
		t.Errorf("aborted errors = %v, want 1", got)
	}
}
