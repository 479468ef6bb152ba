package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tandem/internal/cli"
	"github.com/aretw0/tandem/internal/presentation/tui"
)

var checkCmd = &cobra.Command{
	Use:   "check [documents...]",
	Short: "Evaluate every document and report failures",
	Long: `Loads and evaluates every .pc document under the project root (or the
given ones) and prints a report. Exits non-zero if any document fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := settings(cmd)
		if err != nil {
			return err
		}
		opts := cli.CheckOptions{Config: cfg, Documents: args}
		if plain, _ := cmd.Flags().GetBool("plain"); !plain && tui.IsTerminal(os.Stdout) {
			opts.Markdown = tui.NewRenderer()
		}
		return cli.Check(cmd.Context(), opts, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("plain", false, "Print the report as raw markdown")
}
