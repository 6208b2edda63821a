package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/consolenav/internal/config"
	"github.com/vango-dev/consolenav/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		dir    string
		asYAML bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long: `Create consolenav.json (or consolenav.yaml with --yaml) holding the
default configuration.

Examples:
  consolenav init
  consolenav init --yaml --dir=deploy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(dir) && !force {
				return errors.Newf(errors.CategoryConfig, "a config file already exists in %s", dir).
					WithSuggestion("Pass --force to overwrite it")
			}

			name := config.ConfigFileName
			if asYAML {
				name = "consolenav.yaml"
			}
			path := filepath.Join(dir, name)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd, "Created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to create the config in")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Write YAML instead of JSON")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}
