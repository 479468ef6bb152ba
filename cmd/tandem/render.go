package main

import (
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/tandem/internal/cli"
	"github.com/aretw0/tandem/internal/presentation/tui"
)

var renderCmd = &cobra.Command{
	Use:   "render [document]",
	Short: "Evaluate a document and print it",
	Long: `Evaluates a document (default: the configured entry, else main.pc) and
prints it as HTML, as the JSON virtual tree, or as an outline with node ids.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := settings(cmd)
		if err != nil {
			return err
		}
		opts := cli.RenderOptions{Config: cfg, Profile: termenv.Ascii}
		if len(args) > 0 {
			opts.Document = args[0]
		}
		opts.Part, _ = cmd.Flags().GetString("part")
		opts.Format, _ = cmd.Flags().GetString("format")

		out := cmd.OutOrStdout()
		if tui.IsTerminal(os.Stdout) {
			opts.Profile = termenv.ColorProfile()
		}
		return cli.Render(cmd.Context(), opts, logger, out)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("part", "", "Render only the named <part>")
	renderCmd.Flags().StringP("format", "f", cli.FormatHTML, "Output format: html, json or tree")
}
