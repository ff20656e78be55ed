package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/pricemap/internal/cmd/output"
	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/logging"
)

// Execute runs the pricemap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	var (
		flags      Flags
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:     "pricemap",
		Short:   "Cross-vendor product catalog reconciliation",
		Version: a.version,
		Long: `Pricemap merges the product listings scraped from several vendors into one
catalog per category. A product is kept only when every vendor offers it; the
combined record carries each vendor's price, discount, rating, link and
offers, plus the features and images of the category's feature source.

Outputs are written next to the vendor files as _combined.json and, across
all categories, to final.json under the database root.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setupCommand(configFile, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default is $HOME/.pricemap.yaml)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.StringVarP(&flags.Format, "format", "o", "", "output format: table, json, yaml, wide")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	pf.StringVar(&flags.Root, "root", "", "database root holding the category directories (default ./core/database)")
	pf.StringVar(&flags.Registry, "registry", "", "YAML registry file replacing the built-in categories and vendors")
	pf.DurationVar(&flags.Debounce, "debounce", 0, "minimum time between watcher-triggered recomputes (negative disables)")

	rootCmd.SetVersionTemplate("pricemap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(configFile string, flags Flags) error {
	if configFile != "" {
		if err := a.config.ReadConfigFile(configFile); err != nil {
			return errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	}

	a.config.UpdateFromFlags(flags)

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return errors.WrapValidation("format", err)
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
