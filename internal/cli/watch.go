package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/tandem"
	"github.com/aretw0/tandem/internal/config"
	"github.com/aretw0/tandem/internal/presentation/tui"
	"github.com/aretw0/tandem/pkg/domain"
)

// WatchOptions contains the configuration for the watch command.
type WatchOptions struct {
	Config    config.Config
	Documents []string
	Quiet     bool
}

// applyFunc runs an engine mutation and returns the events it queued.
type applyFunc func(ctx context.Context, fn func(ctx context.Context) error) ([]domain.EngineEvent, error)

// RunWatch loads the entry documents and re-evaluates them as files change
// on disk, until ctx is done.
func RunWatch(ctx context.Context, opts WatchOptions, logger *slog.Logger, w io.Writer) error {
	engine, err := createEngine(opts.Config, logger)
	if err != nil {
		return err
	}
	entries, err := entryURIs(engine, opts.Config, opts.Documents)
	if err != nil {
		return err
	}
	if !opts.Quiet {
		tui.PrintBanner(w, tandem.Version)
	}

	apply := func(ctx context.Context, fn func(ctx context.Context) error) ([]domain.EngineEvent, error) {
		err := fn(ctx)
		return engine.DrainEvents(), err
	}
	return watchLoop(ctx, engine, entries, opts.Config.Watch.Debounce, apply, logger, w)
}

// watchLoop is shared by watch and serve --watch. Entries that fail to load
// are reported and retried on the next change.
func watchLoop(ctx context.Context, engine *tandem.Engine, entries []string, debounce time.Duration, apply applyFunc, logger *slog.Logger, w io.Writer) error {
	root := engine.Root()
	unloaded := append([]string(nil), entries...)
	load := func() {
		var failed []string
		for _, uri := range unloaded {
			_, err := apply(ctx, func(ctx context.Context) error {
				_, err := engine.Load(ctx, uri)
				return err
			})
			if err != nil {
				failed = append(failed, uri)
				printSystemMessage(w, "Failed to load '%s': %v", displayName(root, uri), err)
				continue
			}
			printSystemMessage(w, "Loaded '%s'.", displayName(root, uri))
		}
		unloaded = failed
	}

	changes, err := engine.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("Starting Watcher", "path", root, "entries", len(entries))
	load()
	printSystemMessage(w, "Waiting for changes...")

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher", "reason", context.Cause(ctx))
			return nil
		case uri, ok := <-changes:
			if !ok {
				return nil
			}
			pending[uri] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-fire:
			timer, fire = nil, nil
			uris := make([]string, 0, len(pending))
			for uri := range pending {
				uris = append(uris, uri)
			}
			sort.Strings(uris)
			pending = make(map[string]bool)

			for _, uri := range uris {
				refresh(ctx, engine, uri, apply, logger, w)
			}
			load()
		}
	}
}

func refresh(ctx context.Context, engine *tandem.Engine, uri string, apply applyFunc, logger *slog.Logger, w io.Writer) {
	root := engine.Root()
	printSystemMessage(w, "Change detected in '%s'.", displayName(root, uri))

	events, err := apply(ctx, func(ctx context.Context) error {
		return engine.Refresh(ctx, uri)
	})
	for _, ev := range events {
		printSystemMessage(w, "Re-evaluated '%s'.", displayName(root, ev.EventURI()))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn("Reload failed", "uri", uri, "error", err)
		printSystemMessage(w, "%v", err)
	}
}
