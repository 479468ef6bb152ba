package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/tandem"
	"github.com/aretw0/tandem/internal/config"
	"github.com/aretw0/tandem/internal/presentation/graph"
)

// GraphOptions contains the configuration for the graph command.
type GraphOptions struct {
	Config    config.Config
	Documents []string

	// Changed highlights a file and everything that depends on it.
	Changed string
}

// Graph loads the entry documents and writes their dependency graph as a
// Mermaid flowchart.
func Graph(ctx context.Context, opts GraphOptions, logger *slog.Logger, w io.Writer) error {
	engine, err := createEngine(opts.Config, logger)
	if err != nil {
		return err
	}
	entries, err := entryURIs(engine, opts.Config, opts.Documents)
	if err != nil {
		return err
	}

	nodes, err := collectGraph(ctx, engine, entries)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if opts.Changed != "" {
		changed := engine.URI(opts.Changed)
		overlay = &graph.GraphOverlay{Changed: displayName(engine.Root(), changed)}
		for _, uri := range engine.Dependents(changed) {
			overlay.Dependents = append(overlay.Dependents, displayName(engine.Root(), uri))
		}
	}

	_, err = fmt.Fprint(w, graph.GenerateMermaid(nodes, overlay))
	return err
}

// collectGraph lists each reachable file once, entries first.
func collectGraph(ctx context.Context, engine *tandem.Engine, entries []string) ([]graph.Node, error) {
	isEntry := make(map[string]bool, len(entries))
	seen := make(map[string]bool)
	var order []string
	for _, uri := range entries {
		if _, err := engine.Load(ctx, uri); err != nil {
			return nil, err
		}
		isEntry[uri] = true
		deps, err := engine.Dependencies(uri)
		if err != nil {
			return nil, err
		}
		for _, u := range append([]string{uri}, deps...) {
			if !seen[u] {
				seen[u] = true
				order = append(order, u)
			}
		}
	}

	nodes := make([]graph.Node, 0, len(order))
	for _, uri := range order {
		imports, err := engine.Imports(uri)
		if err != nil {
			return nil, err
		}
		node := graph.Node{ID: displayName(engine.Root(), uri), Kind: graph.KindDocument}
		switch {
		case isEntry[uri]:
			node.Kind = graph.KindEntry
		case strings.HasSuffix(uri, ".css"):
			node.Kind = graph.KindStyleSheet
		}
		for _, imp := range imports {
			node.Imports = append(node.Imports, displayName(engine.Root(), imp))
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
