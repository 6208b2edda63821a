package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/consolenav/pkg/manifest"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the console route tree",
		Long: `Print the console route tree as an outline, or as the JSON
route manifest with --json.

Examples:
  consolenav routes
  consolenav routes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if asJSON {
				return manifest.Build(a.tree).Write(cmd.OutOrStdout())
			}
			return manifest.PrintTree(cmd.OutOrStdout(), a.tree)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the route manifest as JSON")

	return cmd
}
