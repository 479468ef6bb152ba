package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tandem/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, and failures at
// warn level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(ctx context.Context, e *domain.LoadEvent) {
			if e.Err != nil {
				logger.Warn("load failed", "uri", e.URI, "forced", e.Forced, "error", e.Err)
				return
			}
			logger.Debug("loaded", "uri", e.URI, "forced", e.Forced, "files", e.Files, "duration", e.Duration)
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluateEvent) {
			if e.Err != nil {
				logger.Warn("evaluation failed", "uri", e.URI, "part", e.Part, "error", e.Err)
				return
			}
			logger.Debug("evaluated", "uri", e.URI, "part", e.Part, "nodes", e.Nodes, "duration", e.Duration)
		},
	}
}

// Combine merges hooks so each event reaches all of them, in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var loads []func(context.Context, *domain.LoadEvent)
	var evals []func(context.Context, *domain.EvaluateEvent)
	for _, h := range hooks {
		if h.OnLoad != nil {
			loads = append(loads, h.OnLoad)
		}
		if h.OnEvaluate != nil {
			evals = append(evals, h.OnEvaluate)
		}
	}

	var combined domain.LifecycleHooks
	if len(loads) > 0 {
		combined.OnLoad = func(ctx context.Context, e *domain.LoadEvent) {
			for _, fn := range loads {
				fn(ctx, e)
			}
		}
	}
	if len(evals) > 0 {
		combined.OnEvaluate = func(ctx context.Context, e *domain.EvaluateEvent) {
			for _, fn := range evals {
				fn(ctx, e)
			}
		}
	}
	return combined
}
