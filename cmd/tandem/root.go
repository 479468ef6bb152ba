package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/tandem/internal/cli"
	"github.com/aretw0/tandem/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "tandem",
	Short: "Tandem evaluates component documents into virtual DOM trees",
	Long: `Tandem loads component documents with their imports and stylesheets,
evaluates them into virtual DOM trees, and re-evaluates exactly the affected
documents when a file changes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Directory containing the Tandem project (default from config, else .)")
	rootCmd.PersistentFlags().String("config", "", "Project file (default <dir>/"+config.DefaultFile+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// settings loads the project file and applies flag overrides.
func settings(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	dir, _ := cmd.Flags().GetString("dir")
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		base := dir
		if base == "" {
			base = "."
		}
		path = filepath.Join(base, config.DefaultFile)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if dir != "" {
		cfg.Root = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
