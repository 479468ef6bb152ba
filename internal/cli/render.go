package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/muesli/termenv"

	"github.com/aretw0/tandem/internal/config"
	"github.com/aretw0/tandem/internal/presentation/tui"
	"github.com/aretw0/tandem/pkg/vdom"
)

// Output formats of the render command.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatTree = "tree"
)

// RenderOptions contains the configuration for the render command.
type RenderOptions struct {
	Config   config.Config
	Document string
	Part     string
	Format   string
	Profile  termenv.Profile
}

// Render evaluates one document, or one of its parts, and writes it to w.
func Render(ctx context.Context, opts RenderOptions, logger *slog.Logger, w io.Writer) error {
	engine, err := createEngine(opts.Config, logger)
	if err != nil {
		return err
	}
	var names []string
	if opts.Document != "" {
		names = []string{opts.Document}
	}
	uris, err := entryURIs(engine, opts.Config, names)
	if err != nil {
		return err
	}

	node, err := engine.EvaluatePart(ctx, uris[0], opts.Part)
	if err != nil {
		return err
	}
	return writeNode(w, node, opts.Format, opts.Profile)
}

func writeNode(w io.Writer, node vdom.Node, format string, profile termenv.Profile) error {
	switch format {
	case "", FormatHTML:
		_, err := fmt.Fprintln(w, vdom.HTML(node))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(node)
	case FormatTree:
		tui.Tree(w, node, profile)
		return nil
	default:
		return fmt.Errorf("unknown format %q: use %s, %s or %s", format, FormatHTML, FormatJSON, FormatTree)
	}
}
