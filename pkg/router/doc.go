// Package router composes the console's route descriptors into an immutable
// navigation tree and resolves URLs against it.
//
// The router provides:
//   - Tree construction from an explicit list of Route descriptors (Build)
//   - Segment tree matching with typed params and catch-all segments
//   - Redirect evaluation as an explicit Outcome value (Evaluate, Step)
//   - Breadcrumb resolution root-to-leaf (Breadcrumbs)
//   - Link building from route patterns (Tree.Href)
//
// # Route Declarations
//
// Every route names its parent explicitly; nesting is never inferred from the
// path alone:
//
//	routes := []router.Route{
//	    {Path: "/", Component: "RootLayout"},
//	    {Path: "/services", Parent: "/", Component: "ServicesLayout", Breadcrumb: router.Label("Services")},
//	    {Path: "/services/", Parent: "/services", Component: "ServicesList"},
//	    {Path: "/services/:serviceId", Parent: "/services", Component: "ServiceLayout", Breadcrumb: router.ParamLabel("serviceId")},
//	    {Path: "/deploy", Parent: "/", Redirect: &router.Redirect{To: "/services/deploy", PreserveSearch: true}},
//	}
//	tree, err := router.Build(routes)
//
// # Patterns
//
//	/services/:serviceId          → serviceId (string)
//	/invoices/:invoiceId:int      → invoiceId (base-10 integer)
//	/deployments/:id:uuid         → id (UUID)
//	/volumes/:volumeId/browse/*p  → p (rest of the path)
//	/one-click-apps/              → index route of /one-click-apps
//
// When a URL stops at a route that has an index child, the index child is
// appended to the matched chain. A route with neither a component nor a
// redirect is a pure layout and cannot terminate a match on its own.
//
// # Resolution
//
//	switch out := tree.Step("/deploy?foo=bar").(type) {
//	case router.Redirected:
//	    // out.Location == "/services/deploy?foo=bar"
//	case router.Matched:
//	    crumbs := router.Breadcrumbs(out.Match)
//	case router.Failed:
//	    // out.Err is a *NotFoundError, *RedirectError or *InvalidURLError
//	}
package router
