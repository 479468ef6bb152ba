package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tandem/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [documents...]",
	Short: "Export the dependency graph visualization",
	Long:  `Loads the entry documents and outputs a Mermaid diagram (graph TD) of their imports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := settings(cmd)
		if err != nil {
			return err
		}
		changed, _ := cmd.Flags().GetString("changed")
		return cli.Graph(cmd.Context(), cli.GraphOptions{
			Config:    cfg,
			Documents: args,
			Changed:   changed,
		}, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("changed", "", "Highlight a file and the documents re-evaluated when it changes")
}
