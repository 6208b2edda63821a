// Command consolenav inspects, exports and serves the console route tree.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vango-dev/consolenav/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	noColor    bool
	errFormat  string
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		reportError(os.Stderr, root, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "consolenav",
		Short: "Route tree and navigation engine for the cloud console",
		Long: `consolenav resolves console URLs against the declared route tree.

It matches nested routes, follows redirects, validates search
parameters and builds breadcrumbs. The same engine backs the
HTTP and WebSocket navigation server.

Examples:
  consolenav routes
  consolenav resolve "/deploy?foo=bar"
  consolenav serve --address=:9000
  consolenav export --out=dist/routes.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			errors.SetColors(!flags.noColor)
			if _, err := errors.ParseStyle(flags.errFormat); err != nil {
				return err
			}
			return loadEnvFile(flags.envFile, cmd.Flags().Changed("env-file"))
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file (default: consolenav.json in this or a parent directory)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Dotenv file with CONSOLENAV_* overrides")
	pf.StringVar(&flags.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")
	pf.StringVar(&flags.errFormat, "error-format", "text", "Error output format (text, compact, json)")

	rootCmd.AddCommand(
		initCmd(),
		routesCmd(flags),
		resolveCmd(flags),
		serveCmd(flags),
		exportCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// loadEnvFile loads a dotenv file. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil && !explicit {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New("E301").
			WithDetail(fmt.Sprintf("Failed to load env file %s: %v", path, err))
	}
	return nil
}

// reportError writes err to w in the root command's --error-format.
func reportError(w io.Writer, root *cobra.Command, err error) {
	format, _ := root.PersistentFlags().GetString("error-format")
	style, perr := errors.ParseStyle(format)
	if perr != nil {
		style = errors.StyleText
	}
	errors.Fprint(w, err, style)
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
