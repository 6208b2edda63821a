// Package console declares the route tree of the cloud console.
//
// Components are referenced by name; the rendering shell maps each name to
// its page implementation.
package console

import (
	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/search"
)

// Search schemas shared by several routes.
var (
	listSearch = search.MustSchema(
		search.String("search").Optional(),
		search.Int("page").Default(1).Catch(),
	)

	metricsRange = search.MustSchema(
		search.Enum("range", "1h", "6h", "24h", "7d", "30d").Default("1h").Catch(),
	)
)

// Routes returns the console's route descriptors. Each call returns a fresh
// slice.
func Routes() []router.Route {
	var routes []router.Route
	routes = append(routes, shellRoutes()...)
	routes = append(routes, serviceRoutes()...)
	routes = append(routes, databaseRoutes()...)
	routes = append(routes, volumeRoutes()...)
	routes = append(routes, oneClickAppRoutes()...)
	routes = append(routes, settingsRoutes()...)
	return routes
}

// Tree builds the console's route tree.
func Tree() (*router.Tree, error) {
	return router.Build(Routes())
}

func shellRoutes() []router.Route {
	return []router.Route{
		{Path: "/", Component: "RootLayout"},
		{
			Path:      "/login",
			Parent:    "/",
			Component: "Login",
			Search: search.MustSchema(
				search.String("next").Optional(),
				search.Enum("reason", "expired", "logged_out").Optional().DropInvalid(),
			),
		},
		{Path: "/signup", Parent: "/", Component: "Signup"},
		{Path: "/logout", Parent: "/", Redirect: &router.Redirect{To: "/login?reason=logged_out"}},
		{
			Path:       "/activity",
			Parent:     "/",
			Component:  "Activity",
			Breadcrumb: router.Label("Activity"),
			Search: search.MustSchema(
				search.Strings("type").Optional().WithEncoding(search.EncodingComma),
				search.Int("page").Default(1).Catch(),
			),
		},
		{Path: "/deploy", Parent: "/", Redirect: &router.Redirect{To: "/services/deploy", PreserveSearch: true}},
		{Path: "/apps", Parent: "/", Redirect: &router.Redirect{To: "/one-click-apps", PreserveSearch: true}},
		{Path: "/s/:serviceId", Parent: "/", Redirect: &router.Redirect{To: "/services/:serviceId"}},
	}
}

func serviceRoutes() []router.Route {
	return []router.Route{
		{Path: "/services", Parent: "/", Component: "ServicesLayout", Breadcrumb: router.Label("Services")},
		{
			Path:      "/services/",
			Parent:    "/services",
			Component: "ServiceList",
			Search: search.MustSchema(
				search.String("search").Optional(),
				search.Enum("status", "running", "stopped", "deploying", "failed").Optional().DropInvalid(),
				search.Int("page").Default(1).Catch(),
			),
		},
		{
			Path:       "/services/deploy",
			Parent:     "/services",
			Component:  "DeployService",
			Breadcrumb: router.Label("Deploy"),
			Search: search.MustSchema(
				search.Enum("source", "git", "image", "template").Default("git").Catch(),
				search.String("repo").Optional(),
				search.String("template").Optional(),
			),
		},
		{Path: "/services/:serviceId", Parent: "/services", Component: "ServiceLayout", Breadcrumb: router.ParamLabel("serviceId")},
		{Path: "/services/:serviceId/", Parent: "/services/:serviceId", Redirect: &router.Redirect{To: "/services/:serviceId/overview"}},
		{Path: "/services/:serviceId/overview", Parent: "/services/:serviceId", Component: "ServiceOverview", Breadcrumb: router.Label("Overview")},
		{
			Path:       "/services/:serviceId/deployments",
			Parent:     "/services/:serviceId",
			Component:  "ServiceDeployments",
			Breadcrumb: router.Label("Deployments"),
			Search:     listSearch,
		},
		{
			Path:       "/services/:serviceId/deployments/:deploymentId:uuid",
			Parent:     "/services/:serviceId/deployments",
			Component:  "Deployment",
			Breadcrumb: router.BreadcrumbFunc(deploymentCrumb),
		},
		{
			Path:       "/services/:serviceId/logs",
			Parent:     "/services/:serviceId",
			Component:  "ServiceLogs",
			Breadcrumb: router.Label("Logs"),
			Search: search.MustSchema(
				search.Int("tail").Default(500).Catch(),
				search.Bool("follow").Default(false).Catch(),
				search.Enum("level", "debug", "info", "warn", "error").Optional().DropInvalid(),
				search.String("since").Optional(),
			),
		},
		{
			Path:       "/services/:serviceId/metrics",
			Parent:     "/services/:serviceId",
			Component:  "ServiceMetrics",
			Breadcrumb: router.Label("Metrics"),
			Search:     metricsRange,
		},
		{Path: "/services/:serviceId/variables", Parent: "/services/:serviceId", Component: "ServiceVariables", Breadcrumb: router.Label("Variables")},
		{Path: "/services/:serviceId/domains", Parent: "/services/:serviceId", Component: "ServiceDomains", Breadcrumb: router.Label("Domains")},
		{Path: "/services/:serviceId/settings", Parent: "/services/:serviceId", Component: "ServiceSettings", Breadcrumb: router.Label("Settings")},
	}
}

func databaseRoutes() []router.Route {
	return []router.Route{
		{Path: "/databases", Parent: "/", Component: "DatabasesLayout", Breadcrumb: router.Label("Databases")},
		{
			Path:      "/databases/",
			Parent:    "/databases",
			Component: "DatabaseList",
			Search: search.MustSchema(
				search.String("search").Optional(),
				search.Enum("engine", "postgres", "mysql", "redis", "mongodb").Optional().DropInvalid(),
			),
		},
		{
			Path:       "/databases/new",
			Parent:     "/databases",
			Component:  "NewDatabase",
			Breadcrumb: router.Label("New database"),
			Search: search.MustSchema(
				search.Enum("engine", "postgres", "mysql", "redis", "mongodb").Default("postgres").Catch(),
			),
		},
		{Path: "/databases/:databaseId", Parent: "/databases", Component: "DatabaseLayout", Breadcrumb: router.ParamLabel("databaseId")},
		{Path: "/databases/:databaseId/", Parent: "/databases/:databaseId", Redirect: &router.Redirect{To: "/databases/:databaseId/overview"}},
		{Path: "/databases/:databaseId/overview", Parent: "/databases/:databaseId", Component: "DatabaseOverview", Breadcrumb: router.Label("Overview")},
		{Path: "/databases/:databaseId/backups", Parent: "/databases/:databaseId", Component: "DatabaseBackups", Breadcrumb: router.Label("Backups"), Search: listSearch},
		{Path: "/databases/:databaseId/query", Parent: "/databases/:databaseId", Component: "DatabaseQuery", Breadcrumb: router.Label("Query")},
		{Path: "/databases/:databaseId/connect", Parent: "/databases/:databaseId", Component: "DatabaseConnect", Breadcrumb: router.Label("Connect")},
		{Path: "/databases/:databaseId/metrics", Parent: "/databases/:databaseId", Component: "DatabaseMetrics", Breadcrumb: router.Label("Metrics"), Search: metricsRange},
	}
}

func volumeRoutes() []router.Route {
	return []router.Route{
		{Path: "/volumes", Parent: "/", Component: "VolumesLayout", Breadcrumb: router.Label("Volumes")},
		{Path: "/volumes/", Parent: "/volumes", Component: "VolumeList", Search: listSearch},
		{Path: "/volumes/:volumeId", Parent: "/volumes", Component: "VolumeLayout", Breadcrumb: router.ParamLabel("volumeId")},
		{Path: "/volumes/:volumeId/", Parent: "/volumes/:volumeId", Redirect: &router.Redirect{To: "/volumes/:volumeId/browse"}},
		{Path: "/volumes/:volumeId/browse", Parent: "/volumes/:volumeId", Component: "VolumeBrowser", Breadcrumb: router.Label("Files")},
		{Path: "/volumes/:volumeId/browse/*path", Parent: "/volumes/:volumeId/browse", Component: "VolumeBrowser", Breadcrumb: router.ParamLabel("path")},
		{Path: "/volumes/:volumeId/snapshots", Parent: "/volumes/:volumeId", Component: "VolumeSnapshots", Breadcrumb: router.Label("Snapshots")},
	}
}

func oneClickAppRoutes() []router.Route {
	return []router.Route{
		{Path: "/one-click-apps", Parent: "/", Component: "OneClickAppsLayout", Breadcrumb: router.Label("One-click apps")},
		{
			Path:      "/one-click-apps/",
			Parent:    "/one-click-apps",
			Component: "OneClickAppList",
			Search:    search.MustSchema(search.String("search").Optional()),
		},
		{Path: "/one-click-apps/:appSlug", Parent: "/one-click-apps", Component: "OneClickApp", Breadcrumb: router.ParamLabel("appSlug")},
		{
			Path:       "/one-click-apps/:appSlug/install",
			Parent:     "/one-click-apps/:appSlug",
			Component:  "OneClickAppInstall",
			Breadcrumb: router.Label("Install"),
			Search:     search.MustSchema(search.String("version").Optional()),
		},
	}
}

func settingsRoutes() []router.Route {
	return []router.Route{
		{Path: "/settings", Parent: "/", Component: "Settings", Breadcrumb: router.Label("Settings")},
		{Path: "/settings/profile", Parent: "/settings", Component: "ProfileSettings", Breadcrumb: router.Label("Profile")},
		{Path: "/settings/members", Parent: "/settings", Component: "MemberSettings", Breadcrumb: router.Label("Members")},
		{Path: "/settings/tokens", Parent: "/settings", Component: "TokenSettings", Breadcrumb: router.Label("API tokens")},
		{Path: "/settings/billing", Parent: "/settings", Component: "BillingSettings", Breadcrumb: router.Label("Billing")},
		{
			Path:       "/settings/billing/invoices/:invoiceId:int",
			Parent:     "/settings/billing",
			Component:  "Invoice",
			Breadcrumb: router.BreadcrumbFunc(invoiceCrumb),
		},
	}
}

func deploymentCrumb(c router.CrumbContext) router.Breadcrumb {
	id := c.Param("deploymentId")
	if len(id) > 8 {
		id = id[:8]
	}
	return router.Breadcrumb{Label: id, Path: c.Path}
}

func invoiceCrumb(c router.CrumbContext) router.Breadcrumb {
	return router.Breadcrumb{Label: "Invoice #" + c.Param("invoiceId"), Path: c.Path}
}
