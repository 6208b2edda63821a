package navigator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/search"
)

// Navigation is the record of one navigation, from the requested URL to its
// terminal state. The JSON form is what the rendering shell receives.
type Navigation struct {
	ID  string `json:"id"`
	URL string `json:"url"`

	// Seq orders navigations within a Session.
	Seq uint64 `json:"seq,omitempty"`

	State State `json:"state"`

	// Location is the canonical path and query that resolved.
	Location string `json:"location,omitempty"`

	// Route is the pattern of the matched leaf.
	Route       string              `json:"route,omitempty"`
	Chain       []string            `json:"chain,omitempty"`
	Components  []string            `json:"components,omitempty"`
	Params      map[string]string   `json:"params,omitempty"`
	Search      search.Params       `json:"search,omitempty"`
	Breadcrumbs []router.Breadcrumb `json:"breadcrumbs,omitempty"`

	// Redirects lists every location redirected to, in order.
	Redirects   []string     `json:"redirects,omitempty"`
	Transitions []Transition `json:"transitions"`

	// Err is the failure of a Failed navigation.
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`

	// RecoveredFrom is the ID of the failed navigation this one replaced.
	RecoveredFrom string `json:"recoveredFrom,omitempty"`

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`

	// Match is the resolved match, nil unless Resolved.
	Match *router.Match `json:"-"`

	ctx context.Context
	url string
}

func newNavigation(ctx context.Context, id, rawURL string) *Navigation {
	return &Navigation{
		ID:          id,
		URL:         rawURL,
		State:       StateIdle,
		Transitions: []Transition{},
		StartedAt:   time.Now(),
		ctx:         ctx,
		url:         rawURL,
	}
}

// Context returns the navigation's context.
func (n *Navigation) Context() context.Context {
	if n.ctx == nil {
		return context.Background()
	}
	return n.ctx
}

// SetContext replaces the navigation's context. Middleware uses it to pass
// trace spans and values down the chain.
func (n *Navigation) SetContext(ctx context.Context) {
	n.ctx = ctx
}

// CurrentURL is the location being processed: the requested URL until a
// redirect fires, then the latest redirect target.
func (n *Navigation) CurrentURL() string { return n.url }

// Failed reports whether the navigation ended in the Failed state.
func (n *Navigation) Failed() bool { return n.State == StateFailed }

func (n *Navigation) moveTo(to State) {
	if !canMove(n.State, to) {
		panic(fmt.Sprintf("navigator: illegal transition %s → %s", n.State, to))
	}
	n.Transitions = append(n.Transitions, Transition{From: n.State, To: to, URL: n.url})
	n.State = to
}

func (n *Navigation) fail(err error) {
	n.moveTo(StateFailed)
	n.Err = err
	n.Error = err.Error()
	n.ErrorCode = errorCode(err)
}

// errorCode returns the code of the first error in err's tree that has one.
// Cancellation and aborts share one code.
func errorCode(err error) string {
	var coded interface{ ErrorCode() string }
	switch {
	case errors.As(err, &coded):
		return coded.ErrorCode()
	case errors.Is(err, ErrAborted), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "E214"
	}
	return ""
}
