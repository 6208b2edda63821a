// Package routepath normalizes navigation URLs and parses console route
// patterns.
//
// Two kinds of strings pass through this package:
//
//   - URLs typed into the address bar or produced by redirects, which are
//     canonicalized before matching (CanonicalizePath).
//   - Route patterns declared by route descriptors ("/services/:serviceId",
//     "/volumes/:volumeId/browse/*path", "/one-click-apps/"), which are parsed
//     into segments (ParsePattern) and filled with values (Interpolate).
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// CanonicalizeResult contains the result of path canonicalization.
type CanonicalizeResult struct {
	// Path is the canonicalized path (without query string).
	Path string

	// Query is the raw query string (without leading "?").
	Query string

	// Changed indicates if the path was modified during canonicalization.
	Changed bool
}

// Path canonicalization errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-catch-all segment")
)

// CanonicalizePath normalizes a navigation URL.
//
// The following transformations are applied to the path part:
//   - Remove trailing slash (except for root "/")
//   - Collapse multiple slashes (/services//web → /services/web)
//   - Remove "." segments
//   - Resolve ".." segments
//
// Backslashes, NUL bytes, malformed percent-escapes and ".." segments that
// climb above root are rejected. A fragment ("#...") is discarded. The query
// string is returned untouched.
func CanonicalizePath(input string) (CanonicalizeResult, error) {
	if input == "" {
		return CanonicalizeResult{Path: "/", Changed: true}, nil
	}

	input, _, _ = strings.Cut(input, "#")
	path, query := SplitPathAndQuery(input)

	if strings.Contains(path, "\\") {
		return CanonicalizeResult{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return CanonicalizeResult{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return CanonicalizeResult{}, err
		}
	}

	original := path
	segments := make([]string, 0, strings.Count(path, "/")+1)
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return CanonicalizeResult{}, ErrPathEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	path = "/" + strings.Join(segments, "/")
	return CanonicalizeResult{
		Path:    path,
		Query:   query,
		Changed: path != original,
	}, nil
}

// validatePercentEscapes checks that every '%' is followed by two hex digits.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment decodes a single path segment.
// Outside catch-all positions a decoded "/" is rejected: it would let a
// single param smuggle extra path segments.
func DecodeSegment(segment string, isCatchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !isCatchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// SplitSegments splits a canonical path into its raw segments.
// The root path has no segments.
func SplitSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// CanonicalizeNavPath canonicalizes a navigation target produced inside the
// application (redirect targets, programmatic navigations).
//
// Targets must be relative: absolute URLs and scheme-relative "//host" forms
// are rejected so a redirect rule can never send the user off-site.
// The returned string keeps the query, if any.
func CanonicalizeNavPath(target string) (string, error) {
	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") ||
		!strings.HasPrefix(target, "/") {
		return "", ErrInvalidPath
	}

	result, err := CanonicalizePath(target)
	if err != nil {
		return "", err
	}
	return JoinPathAndQuery(result.Path, result.Query), nil
}

// SplitPathAndQuery splits a URL into path and query components.
// The query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// JoinPathAndQuery is the inverse of SplitPathAndQuery.
func JoinPathAndQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
