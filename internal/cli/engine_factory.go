package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/tandem"
	"github.com/aretw0/tandem/internal/config"
	"github.com/aretw0/tandem/pkg/domain"
)

// createEngine initializes a Tandem engine with standard CLI conventions.
func createEngine(cfg config.Config, logger *slog.Logger, extra ...tandem.Option) (*tandem.Engine, error) {
	engineOpts := []tandem.Option{
		tandem.WithLogger(logger),
		tandem.WithData(cfg.Data),
	}
	if cfg.MaxDepth > 0 {
		engineOpts = append(engineOpts, tandem.WithInstanceDepth(cfg.MaxDepth))
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		engineOpts = append(engineOpts, tandem.WithLifecycleHooks(createDebugHooks(logger)))
	}
	engineOpts = append(engineOpts, extra...)

	engine, err := tandem.New(cfg.Root, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// determineEntryPoints picks the documents to load when the user names none:
// the configured entries, else the first of main.pc, index.pc or
// <dirname>.pc found in root.
func determineEntryPoints(root string, configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	candidates := []string{"main", "index", filepath.Base(root)}
	for _, name := range candidates {
		file := name + tandem.DocumentExt
		if _, err := os.Stat(filepath.Join(root, file)); err == nil {
			return []string{file}
		}
	}
	return nil
}

// entryURIs resolves names against the engine root, falling back to
// determineEntryPoints when names is empty.
func entryURIs(engine *tandem.Engine, cfg config.Config, names []string) ([]string, error) {
	if len(names) == 0 {
		names = determineEntryPoints(engine.Root(), cfg.Entries)
	}
	if len(names) == 0 {
		return nil, domain.NewError(domain.ErrResolution, engine.Root(), "no entry document: pass one or create main%s", tandem.DocumentExt)
	}
	uris := make([]string, len(names))
	for i, name := range names {
		uris[i] = engine.URI(name)
	}
	return uris, nil
}
