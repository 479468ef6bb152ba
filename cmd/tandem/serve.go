package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/tandem/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve [documents...]",
	Short: "Start the HTTP server",
	Long: `Starts the Tandem engine as an HTTP server: load, update and render
documents, stream re-evaluations over SSE, and expose Prometheus metrics on
/metrics. With redis configured, snapshots are shared and updates are locked
across servers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := settings(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}
		if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
			cfg.Redis.Addr = addr
		}
		watch, _ := cmd.Flags().GetBool("watch")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.Serve(ctx, cli.ServeOptions{Config: cfg, Documents: args, Watch: watch}, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, else :8080)")
	serveCmd.Flags().String("redis", "", "Redis address for the snapshot store and update lock")
	serveCmd.Flags().BoolP("watch", "w", false, "Also push files saved on disk to the engine")
}
