package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/tandem"
	"github.com/aretw0/tandem/internal/config"
	tandemhttp "github.com/aretw0/tandem/pkg/adapters/http"
	"github.com/aretw0/tandem/pkg/adapters/redis"
	"github.com/aretw0/tandem/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	Config    config.Config
	Documents []string
	Watch     bool
}

// Serve exposes the engine over HTTP, with Prometheus metrics on /metrics,
// until ctx is done. When redis is configured, snapshots are kept there and
// updates take a workspace lock so several servers can share a project.
func Serve(ctx context.Context, opts ServeOptions, logger *slog.Logger, w io.Writer) error {
	metrics := observability.NewMetrics()
	engineOpts := []tandem.Option{tandem.WithLifecycleHooks(metrics.Hooks())}
	serverOpts := []tandemhttp.Option{
		tandemhttp.WithLogger(logger),
		tandemhttp.WithVersion(tandem.Version),
	}

	if cfg := opts.Config.Redis; cfg.Addr != "" {
		storeOpts := []redis.Option{redis.WithTTL(cfg.TTL)}
		if cfg.Prefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(cfg.Prefix+"snapshot:"))
		}
		store := redis.New(cfg.Addr, cfg.Password, cfg.DB, storeOpts...)
		defer store.Close()
		if err := store.Client().Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
		}
		engineOpts = append(engineOpts, tandem.WithSnapshotStore(store))
		serverOpts = append(serverOpts, tandemhttp.WithLocker(redis.NewLocker(store.Client(), cfg.Prefix), "workspace"))
		logger.Info("Using redis snapshot store", "addr", cfg.Addr)
	}

	engine, err := createEngine(opts.Config, logger, engineOpts...)
	if err != nil {
		return err
	}
	serverOpts = append(serverOpts, tandemhttp.WithURIResolver(func(name string) (string, error) {
		return engine.URI(name), nil
	}))
	api := tandemhttp.NewServer(engine, serverOpts...)

	router := chi.NewRouter()
	router.Handle("/metrics", metrics.Handler())
	router.Mount("/", api.Routes())

	srv := &http.Server{
		Addr:    opts.Config.HTTP.Addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Starting Tandem Server on %s", srv.Addr)
		printSystemMessage(w, "Serving documents from: %s", engine.Root())
		serverErrors <- srv.ListenAndServe()
	}()

	if opts.Watch {
		entries, err := entryURIs(engine, opts.Config, opts.Documents)
		if err != nil {
			logger.Warn("Watching without entry documents", "error", err)
		}
		go func() {
			if err := watchLoop(ctx, engine, entries, opts.Config.Watch.Debounce, api.Apply, logger, w); err != nil {
				logger.Error("Watcher stopped", "error", err)
			}
		}()
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		printSystemMessage(w, "Tandem Server stopped gracefully")
		return nil
	}
}
