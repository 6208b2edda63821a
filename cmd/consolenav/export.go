package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/consolenav/internal/errors"
	"github.com/vango-dev/consolenav/pkg/manifest"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		out    string
		bucket string
		key    string
		region string
		noFile bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the route manifest",
		Long: `Write the route manifest to a file and, when a bucket is
configured, upload it to S3.

AWS credentials and region come from the standard AWS sources
(environment, shared config, instance role).

Examples:
  consolenav export
  consolenav export --out=build/routes.json
  consolenav export --no-file --bucket=console-assets --key=nav/routes.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			exp := a.cfg.Export
			if out != "" {
				exp.Output = out
			}
			if bucket != "" {
				exp.Bucket = bucket
			}
			if key != "" {
				exp.Key = key
			}
			if region != "" {
				exp.Region = region
			}
			if noFile {
				exp.Output = ""
			}
			if exp.Output == "" && exp.Bucket == "" {
				return errors.New("E311").
					WithDetail("Nothing to export: --no-file is set and no bucket is configured").
					WithSuggestion("Pass --bucket or set export.bucket")
			}

			m := manifest.Build(a.tree)
			g, ctx := errgroup.WithContext(cmd.Context())

			if exp.Output != "" {
				g.Go(func() error {
					return m.WriteFile(exp.Output)
				})
			}
			var location string
			if exp.Bucket != "" {
				g.Go(func() error {
					pub, err := manifest.NewS3PublisherFromConfig(ctx, exp.Region, exp.Bucket, exp.Key)
					if err != nil {
						return err
					}
					if err := pub.Publish(ctx, m); err != nil {
						return err
					}
					location = pub.Location()
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return errors.New("E311").Wrap(err)
			}
			if exp.Output != "" {
				success(cmd, "Wrote %d routes to %s", len(m.Routes), exp.Output)
			}
			if location != "" {
				success(cmd, "Published %d routes to %s", len(m.Routes), location)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Manifest file path (default from config)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket to upload to")
	cmd.Flags().StringVar(&key, "key", "", "S3 object key (default from config)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region")
	cmd.Flags().BoolVar(&noFile, "no-file", false, "Skip writing the local file")

	return cmd
}
