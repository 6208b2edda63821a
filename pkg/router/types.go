package router

import (
	"net/url"

	"github.com/vango-dev/consolenav/pkg/search"
)

// Route declares one navigable path of the console.
type Route struct {
	// Path is the URL pattern (e.g., "/services/:serviceId/logs").
	// Paths are unique within a tree.
	Path string

	// Parent is the path of the enclosing layout route.
	// Only the root route "/" has no parent.
	Parent string

	// Component names the page component the rendering shell mounts.
	// Empty for pure layout and redirect routes.
	Component string

	// Search declares the accepted query parameters, if any.
	Search *search.Schema

	// Redirect transfers the navigation elsewhere before anything renders.
	// Mutually exclusive with Component.
	Redirect *Redirect

	// Breadcrumb produces this route's breadcrumb entry.
	// Nil for routes that do not appear in the trail.
	Breadcrumb BreadcrumbProducer
}

// navigable reports whether the route can terminate a match.
func (r *Route) navigable() bool {
	return r.Component != "" || r.Redirect != nil
}

// Redirect is a rule that replaces a navigation with one to another path.
type Redirect struct {
	// To is the target pattern, optionally with a fixed query. Params named
	// like the matched route's params are filled in (":serviceId" → "web").
	To string

	// PreserveSearch carries the current raw query string to the target.
	PreserveSearch bool

	// Func computes the target dynamically. When set it takes precedence
	// over To. It must return a relative path, optionally with a query.
	//
	// Func must be a pure function of its RedirectContext: navigators cache
	// resolution steps per URL, so Func may run once for many navigations.
	Func func(RedirectContext) string
}

// RedirectContext is passed to Redirect.Func.
type RedirectContext struct {
	Match *Match
	Route *Node
	Query url.Values
}

// Breadcrumb is one entry of the breadcrumb trail.
type Breadcrumb struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// CrumbContext is passed to breadcrumb producers.
type CrumbContext struct {
	// Match is the full matched chain of the current navigation.
	Match *Match

	// Route is the node whose producer is being invoked.
	Route *Node

	// Path is Route's pattern filled with the matched params.
	Path string
}

// Param returns a matched path param.
func (c CrumbContext) Param(name string) string {
	return c.Match.Param(name)
}

// BreadcrumbProducer is implemented by routes that contribute a breadcrumb.
// Returning an entry with an empty Label contributes nothing.
type BreadcrumbProducer interface {
	Breadcrumb(c CrumbContext) Breadcrumb
}

// BreadcrumbFunc is a function adapter for BreadcrumbProducer.
type BreadcrumbFunc func(c CrumbContext) Breadcrumb

// Breadcrumb implements BreadcrumbProducer.
func (f BreadcrumbFunc) Breadcrumb(c CrumbContext) Breadcrumb {
	return f(c)
}

// Label produces a fixed label linking to the route itself.
func Label(text string) BreadcrumbProducer {
	return BreadcrumbFunc(func(c CrumbContext) Breadcrumb {
		return Breadcrumb{Label: text, Path: c.Path}
	})
}

// ParamLabel produces a label from a matched path param, e.g. the service
// name for "/services/:serviceId".
func ParamLabel(param string) BreadcrumbProducer {
	return BreadcrumbFunc(func(c CrumbContext) Breadcrumb {
		return Breadcrumb{Label: c.Param(param), Path: c.Path}
	})
}
