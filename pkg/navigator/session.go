package navigator

import (
	"context"
	"sync"
	"sync/atomic"
)

// Session tracks the current navigation of one client. Navigations may run
// concurrently; the last one started wins, and an older navigation that
// finishes later is never committed.
type Session struct {
	nav         *Navigator
	autoRecover bool

	seq atomic.Uint64

	mu        sync.Mutex
	committed uint64
	current   *Navigation
	onCommit  func(*Navigation)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecovery makes the session replace failed navigations with one to the
// navigator's fallback.
func WithRecovery() SessionOption {
	return func(s *Session) {
		s.autoRecover = true
	}
}

// OnCommit registers fn to run, under the session lock, each time a
// navigation becomes current.
func OnCommit(fn func(*Navigation)) SessionOption {
	return func(s *Session) {
		s.onCommit = fn
	}
}

// NewSession creates a session over nv.
func (nv *Navigator) NewSession(opts ...SessionOption) *Session {
	s := &Session{nav: nv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Navigate runs a navigation and commits it unless a newer one was started
// meanwhile. It reports whether the result became current.
func (s *Session) Navigate(ctx context.Context, rawURL string) (*Navigation, bool) {
	return s.NavigateReserved(ctx, s.Reserve(), rawURL)
}

// Reserve takes the next sequence number without navigating. Callers that
// start navigations on other goroutines reserve in arrival order and pass the
// number to NavigateReserved.
func (s *Session) Reserve() uint64 {
	return s.seq.Add(1)
}

// NavigateReserved is Navigate under a sequence number from Reserve.
func (s *Session) NavigateReserved(ctx context.Context, seq uint64, rawURL string) (*Navigation, bool) {
	var result *Navigation
	if s.autoRecover {
		result = s.nav.NavigateOrRecover(ctx, rawURL)
	} else {
		result = s.nav.Navigate(ctx, rawURL)
	}
	result.Seq = seq

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.seq.Load() || seq <= s.committed {
		s.nav.logger.Debug("navigation superseded",
			"id", result.ID,
			"url", rawURL,
			"seq", seq,
		)
		return result, false
	}

	s.committed = seq
	s.current = result
	if s.onCommit != nil {
		s.onCommit(result)
	}
	return result, true
}

// Current returns the committed navigation, nil before the first one.
func (s *Session) Current() *Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Latest returns the sequence number of the most recently started navigation.
func (s *Session) Latest() uint64 {
	return s.seq.Load()
}
