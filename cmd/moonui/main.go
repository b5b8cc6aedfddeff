// Package main is the entry point for the MoonUI catalog server. The root
// command loads configuration and sets up logging; subcommands serve the
// API, run migrations or seed development data.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"moonui/internal/config"
)

var (
	configFile string
	verbose    bool

	// cfg is loaded once by the root command before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "moonui",
	Short:         "MoonUI design asset catalog",
	Long:          `Serves the MoonUI storefront and admin APIs for templates, components, gradients and designs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		setupLogger(cfg)
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./config.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// setupLogger installs the default slog logger: text in development,
// JSON everywhere else.
func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if verbose || cfg.IsDev() {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
