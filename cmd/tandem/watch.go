package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/tandem/internal/cli"
)

var watchCmd = &cobra.Command{
	Use:   "watch [documents...]",
	Short: "Re-evaluate documents as files change",
	Long: `Loads the entry documents and watches the project directory. Every saved
file is pushed to the engine, and the documents depending on it are
re-evaluated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := settings(cmd)
		if err != nil {
			return err
		}
		if d, _ := cmd.Flags().GetDuration("debounce"); cmd.Flags().Changed("debounce") {
			cfg.Watch.Debounce = d
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.RunWatch(ctx, cli.WatchOptions{Config: cfg, Documents: args, Quiet: quiet}, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("debounce", 0, "Wait this long for more changes before reloading")
	watchCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
