package router

import (
	"fmt"

	"github.com/vango-dev/consolenav/pkg/search"
)

// Href builds a link to a declared route. The pattern must name a route in
// the tree; params fill its path params and query, if non-empty, is encoded
// after it.
//
//	tree.Href("/services/:serviceId/logs", map[string]string{"serviceId": "web"}, nil)
//	// "/services/web/logs"
func (t *Tree) Href(pattern string, params map[string]string, query search.Params) (string, error) {
	n, ok := t.byPath[pattern]
	if !ok {
		return "", &NotFoundError{Path: pattern}
	}

	path, err := n.pattern.Interpolate(params)
	if err != nil {
		return "", fmt.Errorf("href %s: %w", pattern, err)
	}
	return path + queryString(query), nil
}

func queryString(query search.Params) string {
	if encoded := query.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}
