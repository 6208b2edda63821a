package router

import (
	"errors"
	"net/url"
	"strings"

	"github.com/vango-dev/consolenav/pkg/routepath"
)

// Outcome is the result of one resolution step: exactly one of Matched,
// Redirected or Failed.
type Outcome interface {
	outcome()
}

// Matched is a terminal match with no redirect in its chain.
type Matched struct {
	Match *Match

	// Query is the raw query string of the navigation, without "?".
	Query string
}

// Redirected replaces the navigation with one to Location.
type Redirected struct {
	// From is the route whose rule fired.
	From *Node

	// Location is the canonical target path, with query when one is carried.
	Location string
}

// Failed ends the navigation.
type Failed struct {
	Err error
}

func (Matched) outcome()    {}
func (Redirected) outcome() {}
func (Failed) outcome()     {}

// Evaluate runs the redirect rules of m's chain from root to leaf. The first
// rule found wins and later routes are not consulted.
func Evaluate(m *Match, rawQuery string) Outcome {
	for _, n := range m.chain {
		rule := n.route.Redirect
		if rule == nil {
			continue
		}

		location, err := redirectTarget(m, n, rule, rawQuery)
		if err != nil {
			return Failed{Err: &RedirectError{From: n.Path(), Err: err}}
		}
		return Redirected{From: n, Location: location}
	}
	return Matched{Match: m, Query: rawQuery}
}

func redirectTarget(m *Match, n *Node, rule *Redirect, rawQuery string) (string, error) {
	var target string
	if rule.Func != nil {
		query, _ := url.ParseQuery(rawQuery)
		target = rule.Func(RedirectContext{Match: m, Route: n, Query: query})
		if target == "" {
			return "", errors.New("redirect func returned an empty target")
		}
	} else {
		path, query := routepath.SplitPathAndQuery(rule.To)
		path, err := routepath.Interpolate(path, m.params)
		if err != nil {
			return "", err
		}
		target = routepath.JoinPathAndQuery(path, query)
	}

	location, err := routepath.CanonicalizeNavPath(target)
	if err != nil {
		return "", err
	}

	if rule.PreserveSearch && rawQuery != "" {
		if _, q := routepath.SplitPathAndQuery(location); q != "" {
			location += "&" + rawQuery
		} else {
			location += "?" + rawQuery
		}
	}
	return location, nil
}

// Step matches rawURL and evaluates its redirects. It is one iteration of the
// navigation loop; callers follow Redirected outcomes themselves and bound
// the number of hops.
func (t *Tree) Step(rawURL string) Outcome {
	rawURL, _, _ = strings.Cut(rawURL, "#")
	path, query := routepath.SplitPathAndQuery(rawURL)
	m, err := t.Match(path)
	if err != nil {
		return Failed{Err: err}
	}
	return Evaluate(m, query)
}
