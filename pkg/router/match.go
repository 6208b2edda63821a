package router

import (
	"maps"
	"slices"

	"github.com/vango-dev/consolenav/pkg/routepath"
)

// Match is the result of resolving a URL path against the tree.
type Match struct {
	path   string
	chain  []*Node
	params map[string]string
}

// Path returns the canonical path that was matched.
func (m *Match) Path() string { return m.path }

// Chain returns the matched routes from the root to the leaf.
func (m *Match) Chain() []*Node { return slices.Clone(m.chain) }

// Leaf returns the deepest matched route.
func (m *Match) Leaf() *Node { return m.chain[len(m.chain)-1] }

// Param returns a decoded path param, or "" if absent.
func (m *Match) Param(name string) string { return m.params[name] }

// Params returns a copy of all decoded path params.
func (m *Match) Params() map[string]string { return maps.Clone(m.params) }

// Components returns the component names along the chain, skipping routes
// without one. The rendering shell mounts them outermost first.
func (m *Match) Components() []string {
	var names []string
	for _, n := range m.chain {
		if c := n.Component(); c != "" {
			names = append(names, c)
		}
	}
	return names
}

// Match resolves a path (without query) to its route chain.
// The path is canonicalized first; a URL that fails canonicalization yields
// *InvalidURLError and one that matches nothing yields *NotFoundError.
func (t *Tree) Match(path string) (*Match, error) {
	result, err := routepath.CanonicalizePath(path)
	if err != nil {
		return nil, &InvalidURLError{URL: path, Err: err}
	}

	raw := routepath.SplitSegments(result.Path)
	segments := make([]string, len(raw))
	for i, seg := range raw {
		// Params reject "/" during matching, catch-alls keep it.
		decoded, err := routepath.DecodeSegment(seg, true)
		if err != nil {
			return nil, &InvalidURLError{URL: path, Err: err}
		}
		segments[i] = decoded
	}

	params := make(map[string]string)
	leaf := t.segments.match(segments, params)
	if leaf == nil {
		return nil, &NotFoundError{Path: result.Path}
	}

	var chain []*Node
	for n := leaf; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	slices.Reverse(chain)

	return &Match{path: result.Path, chain: chain, params: params}, nil
}
