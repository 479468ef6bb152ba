package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/aretw0/tandem/internal/config"
	"github.com/aretw0/tandem/internal/presentation/tui"
	"github.com/aretw0/tandem/pkg/vdom"
)

// CheckOptions contains the configuration for the check command.
type CheckOptions struct {
	Config    config.Config
	Documents []string

	// Markdown renders the report; nil writes the raw markdown.
	Markdown func(string) (string, error)
}

// Check evaluates every document under the root, or the given ones, and
// writes a report. The returned error aggregates every failure.
func Check(ctx context.Context, opts CheckOptions, logger *slog.Logger, w io.Writer) error {
	engine, err := createEngine(opts.Config, logger)
	if err != nil {
		return err
	}

	uris := make([]string, 0, len(opts.Documents))
	for _, name := range opts.Documents {
		uris = append(uris, engine.URI(name))
	}
	if len(uris) == 0 {
		if uris, err = engine.Documents(); err != nil {
			return err
		}
	}

	var result *multierror.Error
	results := make([]tui.CheckResult, 0, len(uris))
	for _, uri := range uris {
		name := displayName(engine.Root(), uri)
		node, err := engine.Load(ctx, uri)
		if err != nil {
			result = multierror.Append(result, err)
			results = append(results, tui.CheckResult{Name: name, Err: err})
			continue
		}
		results = append(results, tui.CheckResult{Name: name, Nodes: vdom.Count(node)})
	}

	report := tui.CheckReport(results)
	if opts.Markdown != nil {
		if rendered, err := opts.Markdown(report); err == nil {
			report = rendered
		} else {
			logger.Warn("failed to render report", "error", err)
		}
	}
	fmt.Fprint(w, report)

	return result.ErrorOrNil()
}
