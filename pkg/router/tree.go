package router

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/consolenav/pkg/routepath"
)

// Node is a route placed in the navigation tree.
// Nodes are created by Build and never modified afterwards.
type Node struct {
	route    Route
	pattern  routepath.Pattern
	parent   *Node
	children []*Node
	depth    int
}

// Path returns the route pattern.
func (n *Node) Path() string { return n.route.Path }

// Route returns a copy of the route descriptor.
func (n *Node) Route() Route { return n.route }

// Pattern returns the parsed route pattern.
func (n *Node) Pattern() routepath.Pattern { return n.pattern }

// Component returns the component name, empty for layouts and redirects.
func (n *Node) Component() string { return n.route.Component }

// Parent returns the enclosing route, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the nested routes in declaration order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Depth is 0 for the root.
func (n *Node) Depth() int { return n.depth }

// IsIndex reports whether the route is an index route ("/services/").
func (n *Node) IsIndex() bool { return n.pattern.Index }

// segmentNode is a node of the segment tree used for matching. Its shape
// follows URL segments, which differs from the declared route hierarchy:
// "/services/:serviceId/logs" is one segment below "/services/:serviceId"
// in both, but a route may also sit several segments below its parent.
type segmentNode struct {
	// segment is the static text this node matches
	segment string

	// paramName and paramType are set on param and catch-all nodes
	paramName string
	paramType string

	children      []*segmentNode
	paramChild    *segmentNode
	catchAllChild *segmentNode

	// route ends here; index is the route declared with a trailing slash
	route *Node
	index *Node
}

func (s *segmentNode) findChild(segment string) *segmentNode {
	for _, child := range s.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (s *segmentNode) addChild(segment string) *segmentNode {
	if child := s.findChild(segment); child != nil {
		return child
	}
	child := &segmentNode{segment: segment}
	s.children = append(s.children, child)
	return child
}

// insert places n in the segment tree.
func (s *segmentNode) insert(n *Node) error {
	current := s
	for _, seg := range n.pattern.Segments {
		switch seg.Kind {
		case routepath.SegmentStatic:
			current = current.addChild(seg.Value)
		case routepath.SegmentParam:
			if current.paramChild == nil {
				current.paramChild = &segmentNode{paramName: seg.Name, paramType: seg.Type}
			} else if current.paramChild.paramName != seg.Name || current.paramChild.paramType != seg.Type {
				return &ConflictError{
					Path: n.Path(),
					Reason: fmt.Sprintf("parameter %s conflicts with :%s:%s declared at the same position",
						seg.String(), current.paramChild.paramName, current.paramChild.paramType),
				}
			}
			current = current.paramChild
		case routepath.SegmentCatchAll:
			if current.catchAllChild == nil {
				current.catchAllChild = &segmentNode{paramName: seg.Name, paramType: seg.Type}
			} else if current.catchAllChild.paramName != seg.Name {
				return &ConflictError{
					Path:   n.Path(),
					Reason: fmt.Sprintf("catch-all *%s conflicts with *%s", seg.Name, current.catchAllChild.paramName),
				}
			}
			current = current.catchAllChild
		}
	}

	if n.pattern.Index {
		current.index = n
	} else {
		current.route = n
	}
	return nil
}

// terminal returns the route that renders when a URL stops at this node.
// An index route takes precedence: its layout parent is on the chain anyway.
func (s *segmentNode) terminal() *Node {
	if s.index != nil && s.index.route.navigable() {
		return s.index
	}
	if s.route != nil && s.route.route.navigable() {
		return s.route
	}
	return nil
}

// match finds the terminal route for the remaining decoded segments.
// Static children win over params, params over catch-alls; failed branches
// backtrack and leave params untouched.
func (s *segmentNode) match(segments []string, params map[string]string) *Node {
	if len(segments) == 0 {
		return s.terminal()
	}

	segment, remaining := segments[0], segments[1:]

	if child := s.findChild(segment); child != nil {
		if n := child.match(remaining, params); n != nil {
			return n
		}
	}

	if pc := s.paramChild; pc != nil && !strings.Contains(segment, "/") && ValidateParam(segment, pc.paramType) == nil {
		params[pc.paramName] = segment
		if n := pc.match(remaining, params); n != nil {
			return n
		}
		delete(params, pc.paramName)
	}

	if cc := s.catchAllChild; cc != nil {
		if n := cc.terminal(); n != nil {
			params[cc.paramName] = strings.Join(segments, "/")
			return n
		}
	}

	return nil
}

// Tree is the immutable navigation tree built from route descriptors.
// It is safe for concurrent use.
type Tree struct {
	root     *Node
	nodes    []*Node
	byPath   map[string]*Node
	segments *segmentNode
}

// Build composes routes into a tree.
//
// All construction problems are reported together, joined with errors.Join;
// use errors.As to test for *DuplicatePathError, *OrphanRouteError,
// *ConflictError or *PatternError.
func Build(routes []Route) (*Tree, error) {
	if len(routes) == 0 {
		return nil, ErrEmptyTree
	}

	var errs []error
	t := &Tree{
		byPath:   make(map[string]*Node, len(routes)),
		segments: &segmentNode{},
	}
	shapes := make(map[string]string, len(routes))

	for _, r := range routes {
		pattern, err := routepath.ParsePattern(r.Path)
		if err != nil {
			errs = append(errs, &PatternError{Path: r.Path, Err: err})
			continue
		}
		if err := checkRoute(r); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := t.byPath[r.Path]; dup {
			errs = append(errs, &DuplicatePathError{Path: r.Path, Existing: r.Path})
			continue
		}
		if existing, dup := shapes[pattern.Shape()]; dup {
			errs = append(errs, &DuplicatePathError{Path: r.Path, Existing: existing})
			continue
		}
		shapes[pattern.Shape()] = r.Path

		n := &Node{route: r, pattern: pattern}
		t.byPath[r.Path] = n
		t.nodes = append(t.nodes, n)
	}

	for _, n := range t.nodes {
		if err := t.link(n); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, n := range t.nodes {
		if err := t.segments.insert(n); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	setDepth(t.root, 0)
	return t, nil
}

// checkRoute verifies the descriptor on its own.
func checkRoute(r Route) error {
	if r.Redirect == nil {
		return nil
	}
	if r.Component != "" {
		return &ConflictError{Path: r.Path, Reason: "a redirect route cannot declare a component"}
	}
	if r.Redirect.To == "" && r.Redirect.Func == nil {
		return &ConflictError{Path: r.Path, Reason: "redirect has neither a target nor a target func"}
	}
	if r.Redirect.To != "" {
		target, _ := routepath.SplitPathAndQuery(r.Redirect.To)
		if _, err := routepath.ParsePattern(target); err != nil {
			return &PatternError{Path: r.Path, Err: fmt.Errorf("redirect target: %w", err)}
		}
	}
	return nil
}

// link attaches n to its declared parent.
func (t *Tree) link(n *Node) error {
	orphan := func(reason string) error {
		return &OrphanRouteError{Path: n.Path(), Parent: n.route.Parent, Reason: reason}
	}

	if n.Path() == "/" {
		if n.route.Parent != "" {
			return orphan("the root route cannot have a parent")
		}
		t.root = n
		return nil
	}
	if n.route.Parent == "" {
		return orphan("no parent declared")
	}

	parent, ok := t.byPath[n.route.Parent]
	if !ok {
		return orphan("parent route is not declared")
	}
	if n.pattern.Index && parent.Path() != n.pattern.Base() {
		return orphan(fmt.Sprintf("an index route must be nested directly under %q", n.pattern.Base()))
	}
	if !n.pattern.ExtendsPrefix(parent.pattern) {
		return orphan("path does not extend the parent path")
	}

	n.parent = parent
	parent.children = append(parent.children, n)
	return nil
}

func setDepth(n *Node, depth int) {
	n.depth = depth
	for _, c := range n.children {
		setDepth(c, depth+1)
	}
}

// Root returns the root route.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of routes.
func (t *Tree) Len() int { return len(t.nodes) }

// Lookup returns the node declared with exactly this pattern.
func (t *Tree) Lookup(path string) (*Node, bool) {
	n, ok := t.byPath[path]
	return n, ok
}

// Nodes returns every node in declaration order.
func (t *Tree) Nodes() []*Node { return slices.Clone(t.nodes) }

// Walk visits the tree depth-first, parents before children. Returning false
// from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(n *Node)
	visit = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(t.root)
}
