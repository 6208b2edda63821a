package router

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTree is returned by Build when no routes are declared.
var ErrEmptyTree = errors.New("router: no routes declared")

// DuplicatePathError reports two descriptors declaring the same path, or two
// patterns that match exactly the same URLs.
type DuplicatePathError struct {
	Path string

	// Existing is the earlier declaration. It equals Path for literal
	// duplicates and differs for same-shape patterns ("/a/:x" vs "/a/:y").
	Existing string
}

func (e *DuplicatePathError) Error() string {
	if e.Existing != "" && e.Existing != e.Path {
		return fmt.Sprintf("duplicate route %q: matches the same URLs as %q", e.Path, e.Existing)
	}
	return fmt.Sprintf("duplicate route %q", e.Path)
}

// ErrorCode identifies the error in structured error output.
func (e *DuplicatePathError) ErrorCode() string { return "E201" }

// OrphanRouteError reports a route whose declared parent is missing or does
// not enclose it.
type OrphanRouteError struct {
	Path   string
	Parent string
	Reason string
}

func (e *OrphanRouteError) Error() string {
	return fmt.Sprintf("orphan route %q (parent %q): %s", e.Path, e.Parent, e.Reason)
}

// ErrorCode identifies the error in structured error output.
func (e *OrphanRouteError) ErrorCode() string { return "E202" }

// ConflictError reports a descriptor whose fields contradict each other or
// another descriptor.
type ConflictError struct {
	Path   string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting route %q: %s", e.Path, e.Reason)
}

// ErrorCode identifies the error in structured error output.
func (e *ConflictError) ErrorCode() string { return "E203" }

// PatternError reports a malformed route pattern.
type PatternError struct {
	Path string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("route %q: %v", e.Path, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// ErrorCode identifies the error in structured error output.
func (e *PatternError) ErrorCode() string { return "E204" }

// NotFoundError reports a URL that matches no navigable route.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route matches %q", e.Path)
}

// ErrorCode identifies the error in structured error output.
func (e *NotFoundError) ErrorCode() string { return "E210" }

// RedirectLoopError reports a redirect chain longer than the allowed limit.
type RedirectLoopError struct {
	// Chain lists every location visited, starting with the original URL.
	Chain []string
	Limit int
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect chain exceeded %d hops: %s", e.Limit, strings.Join(e.Chain, " → "))
}

// ErrorCode identifies the error in structured error output.
func (e *RedirectLoopError) ErrorCode() string { return "E211" }

// RedirectError reports a redirect rule that produced an unusable target.
type RedirectError struct {
	From string
	Err  error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect from %q: %v", e.From, e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }

// ErrorCode identifies the error in structured error output.
func (e *RedirectError) ErrorCode() string { return "E212" }

// InvalidURLError reports a URL rejected by canonicalization.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// ErrorCode identifies the error in structured error output.
func (e *InvalidURLError) ErrorCode() string { return "E213" }
