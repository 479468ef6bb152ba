package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tandem"
	"github.com/aretw0/tandem/internal/config"
	"github.com/aretw0/tandem/pkg/adapters/mcp"
)

// Transports supported by the mcp command.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions contains the configuration for the mcp command.
type MCPOptions struct {
	Config    config.Config
	Transport string
	Addr      string
	BaseURL   string
}

// ServeMCP runs the engine as a Model Context Protocol server.
func ServeMCP(ctx context.Context, opts MCPOptions, logger *slog.Logger) error {
	engine, err := createEngine(opts.Config, logger)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(engine, tandem.Version,
		mcp.WithLogger(logger),
		mcp.WithURIResolver(func(name string) (string, error) {
			return engine.URI(name), nil
		}),
	)

	switch opts.Transport {
	case "", TransportStdio:
		logger.Info("Starting Tandem MCP Server (Stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting Tandem MCP Server (SSE)", "addr", opts.Addr)
		return srv.ServeSSE(ctx, opts.Addr, opts.BaseURL)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: %s, %s", opts.Transport, TransportStdio, TransportSSE)
	}
}
