package router

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/consolenav/pkg/routepath"
	"github.com/vango-dev/consolenav/pkg/search"
)

func chainPaths(m *Match) []string {
	var paths []string
	for _, n := range m.Chain() {
		paths = append(paths, n.Path())
	}
	return paths
}

func TestMatch(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	tests := []struct {
		url    string
		path   string
		chain  []string
		params map[string]string
	}{
		{
			url:    "/settings",
			path:   "/settings",
			chain:  []string{"/", "/settings"},
			params: map[string]string{},
		},
		{
			url:    "/services",
			path:   "/services",
			chain:  []string{"/", "/services", "/services/"},
			params: map[string]string{},
		},
		{
			url:    "/services/deploy",
			path:   "/services/deploy",
			chain:  []string{"/", "/services", "/services/deploy"},
			params: map[string]string{},
		},
		{
			url:    "/services/web/logs",
			path:   "/services/web/logs",
			chain:  []string{"/", "/services", "/services/:serviceId", "/services/:serviceId/logs"},
			params: map[string]string{"serviceId": "web"},
		},
		{
			url:    "/services/web",
			path:   "/services/web",
			chain:  []string{"/", "/services", "/services/:serviceId", "/services/:serviceId/"},
			params: map[string]string{"serviceId": "web"},
		},
		{
			url:    "/services//web/./logs/",
			path:   "/services/web/logs",
			chain:  []string{"/", "/services", "/services/:serviceId", "/services/:serviceId/logs"},
			params: map[string]string{"serviceId": "web"},
		},
		{
			url:    "/services/my%20app/logs",
			path:   "/services/my%20app/logs",
			chain:  []string{"/", "/services", "/services/:serviceId", "/services/:serviceId/logs"},
			params: map[string]string{"serviceId": "my app"},
		},
		{
			url:    "/invoices/42",
			path:   "/invoices/42",
			chain:  []string{"/", "/invoices/:invoiceId:int"},
			params: map[string]string{"invoiceId": "42"},
		},
		{
			url:    "/volumes/v1/browse/etc/nginx/nginx.conf",
			path:   "/volumes/v1/browse/etc/nginx/nginx.conf",
			chain:  []string{"/", "/volumes", "/volumes/:volumeId/browse/*path"},
			params: map[string]string{"volumeId": "v1", "path": "etc/nginx/nginx.conf"},
		},
		{
			url:    "/",
			path:   "/",
			chain:  []string{"/"},
			params: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			m, err := tree.Match(tt.url)
			if err != nil {
				t.Fatalf("Match(%q) error = %v", tt.url, err)
			}
			if m.Path() != tt.path {
				t.Errorf("Path() = %q, want %q", m.Path(), tt.path)
			}
			if diff := cmp.Diff(tt.chain, chainPaths(m)); diff != "" {
				t.Errorf("Chain() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.params, m.Params()); diff != "" {
				t.Errorf("Params() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchNotFound(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	tests := []string{
		"/nope",
		"/volumes",
		"/invoices/abc",
		"/services/a%2Fb",
		"/services/web/unknown",
		"/volumes/v1/browse",
	}

	for _, url := range tests {
		t.Run(url, func(t *testing.T) {
			_, err := tree.Match(url)
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				t.Errorf("Match(%q) error = %v, want *NotFoundError", url, err)
			}
		})
	}
}

func TestMatchInvalidURL(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	tests := []struct {
		url  string
		want error
	}{
		{"/services\\web", routepath.ErrBackslashInPath},
		{"/services/%zz", routepath.ErrInvalidPercentEscape},
		{"/../etc", routepath.ErrPathEscapesRoot},
		{"/a%00b", routepath.ErrNullByteInPath},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := tree.Match(tt.url)
			var invalid *InvalidURLError
			if !errors.As(err, &invalid) {
				t.Fatalf("Match(%q) error = %v, want *InvalidURLError", tt.url, err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Match(%q) error = %v, want %v", tt.url, err, tt.want)
			}
		})
	}
}

func TestMatchStaticBeatsParam(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	m, err := tree.Match("/services/deploy")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if m.Leaf().Path() != "/services/deploy" {
		t.Errorf("Leaf() = %q, want %q", m.Leaf().Path(), "/services/deploy")
	}
	if m.Param("serviceId") != "" {
		t.Errorf("Param(serviceId) = %q, want empty", m.Param("serviceId"))
	}
}

func TestMatchBacktracksFromStatic(t *testing.T) {
	tree := mustBuild(t, []Route{
		{Path: "/", Component: "Root"},
		{Path: "/a", Parent: "/"},
		{Path: "/a/new", Parent: "/a", Component: "New"},
		{Path: "/a/:id", Parent: "/a", Component: "Item"},
		{Path: "/a/:id/edit", Parent: "/a/:id", Component: "Edit"},
	})

	m, err := tree.Match("/a/new/edit")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if m.Leaf().Path() != "/a/:id/edit" {
		t.Errorf("Leaf() = %q, want %q", m.Leaf().Path(), "/a/:id/edit")
	}
	if m.Param("id") != "new" {
		t.Errorf("Param(id) = %q, want %q", m.Param("id"), "new")
	}
}

func TestMatchComponents(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	m, err := tree.Match("/volumes/v1/browse/a")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	want := []string{"RootLayout", "VolumeBrowser"}
	if diff := cmp.Diff(want, m.Components()); diff != "" {
		t.Errorf("Components() mismatch (-want +got):\n%s", diff)
	}
}

func TestStep(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	tests := []struct {
		url      string
		location string
		from     string
	}{
		{"/deploy?foo=bar", "/services/deploy?foo=bar", "/deploy"},
		{"/deploy", "/services/deploy", "/deploy"},
		{"/deploy?foo=bar#top", "/services/deploy?foo=bar", "/deploy"},
		{"/services/web", "/services/web/overview", "/services/:serviceId/"},
		{"/services/web?tab=env", "/services/web/overview", "/services/:serviceId/"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			out, ok := tree.Step(tt.url).(Redirected)
			if !ok {
				t.Fatalf("Step(%q) = %#v, want Redirected", tt.url, tree.Step(tt.url))
			}
			if out.Location != tt.location {
				t.Errorf("Location = %q, want %q", out.Location, tt.location)
			}
			if out.From.Path() != tt.from {
				t.Errorf("From = %q, want %q", out.From.Path(), tt.from)
			}
		})
	}
}

func TestStepMatched(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	out, ok := tree.Step("/settings?tab=billing").(Matched)
	if !ok {
		t.Fatalf("Step() = %#v, want Matched", tree.Step("/settings?tab=billing"))
	}
	if out.Query != "tab=billing" {
		t.Errorf("Query = %q, want %q", out.Query, "tab=billing")
	}
	if out.Match.Leaf().Component() != "Settings" {
		t.Errorf("Leaf().Component() = %q, want %q", out.Match.Leaf().Component(), "Settings")
	}
}

func TestStepFailed(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	out, ok := tree.Step("/nope?x=1").(Failed)
	if !ok {
		t.Fatalf("Step() = %#v, want Failed", tree.Step("/nope?x=1"))
	}
	var nf *NotFoundError
	if !errors.As(out.Err, &nf) {
		t.Errorf("Err = %v, want *NotFoundError", out.Err)
	}
}

func TestEvaluateAncestorRedirectWins(t *testing.T) {
	tree := mustBuild(t, []Route{
		{Path: "/", Component: "Root"},
		{Path: "/settings", Parent: "/", Component: "Settings"},
		{Path: "/legacy", Parent: "/", Redirect: &Redirect{To: "/settings"}},
		{Path: "/legacy/profile", Parent: "/legacy", Redirect: &Redirect{To: "/"}},
		{Path: "/legacy/profile/edit", Parent: "/legacy/profile", Component: "Edit"},
	})

	out, ok := tree.Step("/legacy/profile/edit").(Redirected)
	if !ok {
		t.Fatalf("Step() = %#v, want Redirected", tree.Step("/legacy/profile/edit"))
	}
	if out.From.Path() != "/legacy" {
		t.Errorf("From = %q, want %q", out.From.Path(), "/legacy")
	}
	if out.Location != "/settings" {
		t.Errorf("Location = %q, want %q", out.Location, "/settings")
	}
}

func TestRedirectFunc(t *testing.T) {
	tree := mustBuild(t, []Route{
		{Path: "/", Component: "Root"},
		{Path: "/services", Parent: "/", Component: "Services"},
		{Path: "/services/:serviceId", Parent: "/services", Component: "Service"},
		{Path: "/s/:serviceId", Parent: "/", Redirect: &Redirect{
			Func: func(c RedirectContext) string {
				return "/services/" + c.Match.Param("serviceId") + "?tab=" + c.Query.Get("tab")
			},
			PreserveSearch: true,
		}},
		{Path: "/evil", Parent: "/", Redirect: &Redirect{
			Func: func(RedirectContext) string { return "https://example.com" },
		}},
		{Path: "/empty", Parent: "/", Redirect: &Redirect{
			Func: func(RedirectContext) string { return "" },
		}},
	})

	out, ok := tree.Step("/s/web?tab=logs").(Redirected)
	if !ok {
		t.Fatalf("Step() = %#v, want Redirected", tree.Step("/s/web?tab=logs"))
	}
	if want := "/services/web?tab=logs&tab=logs"; out.Location != want {
		t.Errorf("Location = %q, want %q", out.Location, want)
	}

	failed, ok := tree.Step("/evil").(Failed)
	if !ok {
		t.Fatalf("Step(/evil) = %#v, want Failed", tree.Step("/evil"))
	}
	var re *RedirectError
	if !errors.As(failed.Err, &re) {
		t.Fatalf("Err = %v, want *RedirectError", failed.Err)
	}
	if !errors.Is(failed.Err, routepath.ErrInvalidPath) {
		t.Errorf("Err = %v, want ErrInvalidPath", failed.Err)
	}

	if _, ok := tree.Step("/empty").(Failed); !ok {
		t.Errorf("Step(/empty) = %#v, want Failed", tree.Step("/empty"))
	}
}

func TestBreadcrumbs(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	tests := []struct {
		url  string
		want []Breadcrumb
	}{
		{"/", []Breadcrumb{}},
		{"/settings", []Breadcrumb{{Label: "Settings", Path: "/settings"}}},
		{"/services", []Breadcrumb{{Label: "Services", Path: "/services"}}},
		{"/services/web/logs", []Breadcrumb{
			{Label: "Services", Path: "/services"},
			{Label: "web", Path: "/services/web"},
			{Label: "Logs", Path: "/services/web/logs"},
		}},
		{"/invoices/7", []Breadcrumb{}},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			m, err := tree.Match(tt.url)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, Breadcrumbs(m)); diff != "" {
				t.Errorf("Breadcrumbs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBreadcrumbsSkipEmptyAndRepeated(t *testing.T) {
	tree := mustBuild(t, []Route{
		{Path: "/", Component: "Root", Breadcrumb: BreadcrumbFunc(func(CrumbContext) Breadcrumb {
			return Breadcrumb{}
		})},
		{Path: "/databases", Parent: "/", Component: "DatabasesLayout", Breadcrumb: Label("Databases")},
		{Path: "/databases/", Parent: "/databases", Component: "DatabaseList", Breadcrumb: Label("Databases")},
	})

	m, err := tree.Match("/databases")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	want := []Breadcrumb{{Label: "Databases", Path: "/databases"}}
	if diff := cmp.Diff(want, Breadcrumbs(m)); diff != "" {
		t.Errorf("Breadcrumbs() mismatch (-want +got):\n%s", diff)
	}
}

func TestBreadcrumbContext(t *testing.T) {
	var got CrumbContext
	tree := mustBuild(t, []Route{
		{Path: "/", Component: "Root"},
		{Path: "/volumes", Parent: "/"},
		{Path: "/volumes/:volumeId", Parent: "/volumes", Component: "Volume", Breadcrumb: BreadcrumbFunc(func(c CrumbContext) Breadcrumb {
			got = c
			return Breadcrumb{Label: "Volume " + c.Param("volumeId"), Path: c.Path}
		})},
	})

	m, err := tree.Match("/volumes/data")
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	crumbs := Breadcrumbs(m)

	if got.Route.Path() != "/volumes/:volumeId" {
		t.Errorf("Route = %q, want %q", got.Route.Path(), "/volumes/:volumeId")
	}
	if got.Path != "/volumes/data" {
		t.Errorf("Path = %q, want %q", got.Path, "/volumes/data")
	}
	if len(crumbs) != 1 || crumbs[0].Label != "Volume data" {
		t.Errorf("Breadcrumbs() = %v, want [Volume data]", crumbs)
	}
}

func TestHref(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	tests := []struct {
		pattern string
		params  map[string]string
		query   search.Params
		want    string
	}{
		{"/settings", nil, nil, "/settings"},
		{"/services/:serviceId/logs", map[string]string{"serviceId": "web"}, nil, "/services/web/logs"},
		{"/services/:serviceId/logs", map[string]string{"serviceId": "my app"}, search.Params{"tail": 100}, "/services/my%20app/logs?tail=100"},
		{"/services/", nil, search.Params{"search": "redis"}, "/services?search=redis"},
		{"/volumes/:volumeId/browse/*path", map[string]string{"volumeId": "v1", "path": "etc/hosts"}, nil, "/volumes/v1/browse/etc/hosts"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := tree.Href(tt.pattern, tt.params, tt.query)
			if err != nil {
				t.Fatalf("Href() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Href() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHrefErrors(t *testing.T) {
	tree := mustBuild(t, testRoutes())

	var nf *NotFoundError
	if _, err := tree.Href("/missing", nil, nil); !errors.As(err, &nf) {
		t.Errorf("Href(/missing) error = %v, want *NotFoundError", err)
	}
	if _, err := tree.Href("/services/:serviceId", nil, nil); !errors.Is(err, routepath.ErrMissingParam) {
		t.Errorf("Href() error = %v, want ErrMissingParam", err)
	}
}
