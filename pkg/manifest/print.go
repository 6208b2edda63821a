package manifest

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/consolenav/pkg/router"
)

// PrintTree writes an indented outline of tree to w, one route per line:
//
//	/  RootLayout
//	├── /settings  Settings
//	└── /deploy  -> /services/deploy (+search)
func PrintTree(w io.Writer, tree *router.Tree) error {
	root := tree.Root()
	if _, err := fmt.Fprintln(w, describe(root)); err != nil {
		return err
	}
	return printChildren(w, root, "")
}

func printChildren(w io.Writer, n *router.Node, prefix string) error {
	children := n.Children()
	for i, child := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		if _, err := fmt.Fprintln(w, prefix+branch+describe(child)); err != nil {
			return err
		}
		if err := printChildren(w, child, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

func describe(n *router.Node) string {
	r := n.Route()
	var b strings.Builder
	b.WriteString(n.Path())
	if r.Component != "" {
		b.WriteString("  ")
		b.WriteString(r.Component)
	}
	if rd := r.Redirect; rd != nil {
		b.WriteString("  -> ")
		if rd.Func != nil {
			b.WriteString("(dynamic)")
		} else {
			b.WriteString(rd.To)
		}
		if rd.PreserveSearch {
			b.WriteString(" (+search)")
		}
	}
	if fields := r.Search.Fields(); len(fields) > 0 {
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		fmt.Fprintf(&b, "  ?%s", strings.Join(names, ","))
	}
	return b.String()
}
