package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/consolenav/internal/errors"
	"github.com/vango-dev/consolenav/pkg/navigator"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	var (
		fallback bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a console URL",
		Long: `Resolve a console URL: match it, follow redirects, validate
search parameters and build breadcrumbs.

The command exits non-zero when the navigation fails, unless
--recover replaces the failure with a navigation to the fallback.

Examples:
  consolenav resolve /settings
  consolenav resolve "/deploy?foo=bar"
  consolenav resolve "/one-click-apps/?search=redis" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			nv, err := a.newNavigator(nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.NavigateTimeout())
			defer cancel()

			var nav *navigator.Navigation
			if fallback {
				nav = nv.NavigateOrRecover(ctx, args[0])
			} else {
				nav = nv.Navigate(ctx, args[0])
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(nav); err != nil {
					return err
				}
			} else {
				printNavigation(cmd.OutOrStdout(), nav)
			}

			if nav.Failed() {
				return errors.FromError(nav.Err, "E313")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fallback, "recover", false, "Recover a failed navigation to the fallback path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the navigation as JSON")

	return cmd
}

// printNavigation writes a navigation as aligned "Key: value" lines.
func printNavigation(w io.Writer, nav *navigator.Navigation) {
	line := func(key, value string) {
		fmt.Fprintf(w, "%-12s %s\n", key+":", value)
	}

	line("State", nav.State.String())
	if nav.Failed() {
		line("Error", nav.Error)
		return
	}

	line("Location", nav.Location)
	line("Route", nav.Route)
	if len(nav.Redirects) > 0 {
		line("Redirects", strings.Join(append([]string{nav.URL}, nav.Redirects...), " -> "))
	}
	if nav.RecoveredFrom != "" {
		line("Recovered", nav.RecoveredFrom)
	}
	line("Components", strings.Join(nav.Components, " > "))

	labels := make([]string, len(nav.Breadcrumbs))
	for i, b := range nav.Breadcrumbs {
		labels[i] = b.Label
	}
	line("Breadcrumbs", fmt.Sprintf("%q", labels))

	keys := make([]string, 0, len(nav.Search))
	for k := range nav.Search {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, nav.Search[k])
	}
	line("Search", "{"+strings.Join(pairs, ", ")+"}")
}
