package router

// Breadcrumbs resolves the breadcrumb trail of a match.
//
// Producers run root to leaf, so parent entries always precede child entries.
// Routes without a producer, and producers returning an empty label, add
// nothing. An entry identical to an earlier one is dropped, which lets a
// layout and its index route share a label.
func Breadcrumbs(m *Match) []Breadcrumb {
	crumbs := []Breadcrumb{}
	seen := make(map[Breadcrumb]bool)
	for _, n := range m.chain {
		producer := n.route.Breadcrumb
		if producer == nil {
			continue
		}

		// The pattern's params are all in the match, since n is on its chain.
		path, _ := n.pattern.Interpolate(m.params)
		crumb := producer.Breadcrumb(CrumbContext{Match: m, Route: n, Path: path})
		if crumb.Label == "" || seen[crumb] {
			continue
		}
		seen[crumb] = true
		crumbs = append(crumbs, crumb)
	}
	return crumbs
}
