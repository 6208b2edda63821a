// Package navigator drives navigations through the router's state machine:
// Idle → Matching → (Redirecting → Matching)* → Validating → Resolved, with
// Failed reachable from every non-terminal state.
//
//	nav, err := navigator.New(tree, navigator.WithLogger(logger))
//	result := nav.Navigate(ctx, "/deploy?foo=bar")
//	// result.State == navigator.StateResolved
//	// result.Location == "/services/deploy?foo=bar"
//
// Navigation is synchronous. Use a Session when navigations can race and
// only the newest may become current.
package navigator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/routepath"
	"github.com/vango-dev/consolenav/pkg/search"
)

const (
	// DefaultMaxRedirects is the redirect hop limit of a navigation.
	DefaultMaxRedirects = 10

	// DefaultFallback is where Recover sends failed navigations.
	DefaultFallback = "/"

	// DefaultCacheSize is the number of resolution steps kept in the cache.
	DefaultCacheSize = 512
)

// ErrAborted is the failure of a navigation stopped by middleware before it
// reached a terminal state.
var ErrAborted = errors.New("navigation aborted by middleware")

// Navigator resolves URLs against an immutable route tree.
// It is safe for concurrent use.
type Navigator struct {
	tree         *router.Tree
	maxRedirects int
	fallback     string
	cacheSize    int
	cache        *lru.Cache[string, router.Outcome]
	middleware   []Middleware
	logger       *slog.Logger
	newID        func() string
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithMaxRedirects sets the redirect hop limit. Values below 1 keep the
// default.
func WithMaxRedirects(n int) Option {
	return func(nv *Navigator) {
		if n > 0 {
			nv.maxRedirects = n
		}
	}
}

// WithFallback sets the path Recover navigates to.
func WithFallback(path string) Option {
	return func(nv *Navigator) {
		nv.fallback = path
	}
}

// WithCacheSize sets the step cache size. Zero disables caching. Cached
// steps include the targets of redirect funcs.
func WithCacheSize(size int) Option {
	return func(nv *Navigator) {
		nv.cacheSize = size
	}
}

// WithMiddleware appends navigation middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(nv *Navigator) {
		nv.middleware = append(nv.middleware, mw...)
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(nv *Navigator) {
		nv.logger = logger
	}
}

// New creates a navigator over tree.
func New(tree *router.Tree, opts ...Option) (*Navigator, error) {
	if tree == nil {
		return nil, errors.New("navigator: nil route tree")
	}

	nv := &Navigator{
		tree:         tree,
		maxRedirects: DefaultMaxRedirects,
		fallback:     DefaultFallback,
		cacheSize:    DefaultCacheSize,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(nv)
	}
	if nv.logger == nil {
		nv.logger = slog.Default()
	}

	if _, err := routepath.CanonicalizeNavPath(nv.fallback); err != nil {
		return nil, errors.Join(errors.New("navigator: invalid fallback "+nv.fallback), err)
	}

	if nv.cacheSize > 0 {
		cache, err := lru.New[string, router.Outcome](nv.cacheSize)
		if err != nil {
			return nil, err
		}
		nv.cache = cache
	}
	return nv, nil
}

// Use appends middleware. It must not be called concurrently with Navigate.
func (nv *Navigator) Use(mw ...Middleware) {
	nv.middleware = append(nv.middleware, mw...)
}

// Tree returns the route tree.
func (nv *Navigator) Tree() *router.Tree { return nv.tree }

// Fallback returns the recovery path.
func (nv *Navigator) Fallback() string { return nv.fallback }

// Navigate runs one navigation to completion. The returned navigation is
// always Resolved or Failed.
func (nv *Navigator) Navigate(ctx context.Context, rawURL string) *Navigation {
	nav := newNavigation(ctx, nv.newID(), rawURL)

	err := ComposeMiddleware(nav, nv.middleware, func() error {
		nv.run(nav)
		return nav.Err
	})
	if !nav.State.Terminal() {
		if err == nil {
			err = ErrAborted
		}
		nav.fail(err)
	}
	nav.Duration = time.Since(nav.StartedAt)
	return nav
}

// Recover replaces a failed navigation with one to the fallback path.
// Navigations that did not fail are returned unchanged, as is the fallback
// navigation itself when it fails too.
func (nv *Navigator) Recover(ctx context.Context, failed *Navigation) *Navigation {
	if failed == nil || !failed.Failed() {
		return failed
	}

	nv.logger.Warn("navigation failed, recovering",
		"id", failed.ID,
		"url", failed.URL,
		"fallback", nv.fallback,
		"error", failed.Err,
	)

	nav := nv.Navigate(ctx, nv.fallback)
	nav.RecoveredFrom = failed.ID
	return nav
}

// NavigateOrRecover navigates and recovers on failure.
func (nv *Navigator) NavigateOrRecover(ctx context.Context, rawURL string) *Navigation {
	return nv.Recover(ctx, nv.Navigate(ctx, rawURL))
}

// run is the navigation loop.
func (nv *Navigator) run(nav *Navigation) {
	nav.moveTo(StateMatching)

	for {
		if err := nav.Context().Err(); err != nil {
			nav.fail(err)
			return
		}

		switch out := nv.step(nav.url).(type) {
		case router.Failed:
			nav.fail(out.Err)
			return

		case router.Redirected:
			nav.Redirects = append(nav.Redirects, out.Location)
			if len(nav.Redirects) > nv.maxRedirects {
				nav.fail(&router.RedirectLoopError{
					Chain: append([]string{nav.URL}, nav.Redirects...),
					Limit: nv.maxRedirects,
				})
				return
			}
			nav.moveTo(StateRedirecting)
			nv.logger.Debug("navigation redirected",
				"id", nav.ID,
				"from", nav.url,
				"to", out.Location,
				"route", out.From.Path(),
			)
			nav.url = out.Location
			nav.moveTo(StateMatching)

		case router.Matched:
			nav.moveTo(StateValidating)
			params, err := validateChain(out.Match, out.Query)
			if err != nil {
				nav.Route = out.Match.Leaf().Path()
				nav.fail(err)
				return
			}
			nv.resolve(nav, out, params)
			return
		}
	}
}

func (nv *Navigator) step(url string) router.Outcome {
	if nv.cache == nil {
		return nv.tree.Step(url)
	}
	if out, ok := nv.cache.Get(url); ok {
		return out
	}
	out := nv.tree.Step(url)
	nv.cache.Add(url, out)
	return out
}

func (nv *Navigator) resolve(nav *Navigation, out router.Matched, params search.Params) {
	m := out.Match

	nav.Match = m
	nav.Location = routepath.JoinPathAndQuery(m.Path(), out.Query)
	nav.Route = m.Leaf().Path()
	for _, n := range m.Chain() {
		nav.Chain = append(nav.Chain, n.Path())
	}
	nav.Components = m.Components()
	nav.Params = m.Params()
	nav.Search = params
	nav.Breadcrumbs = router.Breadcrumbs(m)
	nav.moveTo(StateResolved)
}

// validateChain validates the query against every schema on the chain, root
// to leaf. Deeper routes win when two schemas declare the same field.
func validateChain(m *router.Match, rawQuery string) (search.Params, error) {
	params := search.Params{}
	for _, n := range m.Chain() {
		schema := n.Route().Search
		if schema == nil {
			continue
		}
		p, err := search.Validate(schema, rawQuery)
		if err != nil {
			var verr *search.ValidationError
			if errors.As(err, &verr) {
				verr.Route = n.Path()
			}
			return nil, err
		}
		params = params.Merge(p)
	}
	return params, nil
}
