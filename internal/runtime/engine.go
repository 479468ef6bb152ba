package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/aretw0/tandem/internal/graph"
	"github.com/aretw0/tandem/internal/logging"
	"github.com/aretw0/tandem/pkg/adapters/memory"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/ports"
	"github.com/aretw0/tandem/pkg/vdom"
)

// Engine keeps the dependency graph of every loaded document and re-evaluates
// the affected documents when a file changes. It is not safe for concurrent
// use; hosts serialize calls.
type Engine struct {
	graph     *graph.Graph
	vfs       ports.VirtualFileSystem
	evaluator *Evaluator
	store     ports.SnapshotStore
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	data      map[string]any
	maxDepth  int
	events    []domain.EngineEvent
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the logger shared by the engine, its graph and evaluator.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSnapshotStore sets where last known good trees are kept. The default is
// an in-memory store.
func WithSnapshotStore(store ports.SnapshotStore) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithData binds data at the top level of every evaluated document.
func WithData(data map[string]any) EngineOption {
	return func(e *Engine) {
		e.data = data
	}
}

// WithInstanceDepth bounds nested component instantiation.
func WithInstanceDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// NewEngine wires an engine over the given collaborators.
func NewEngine(vfs ports.VirtualFileSystem, parser ports.Parser, exprs ports.ExpressionEvaluator, styles ports.StyleEvaluator, opts ...EngineOption) *Engine {
	e := &Engine{
		vfs:      vfs,
		store:    memory.NewStore(),
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxInstanceDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.graph = graph.New(parser, graph.WithLogger(e.logger))
	e.evaluator = NewEvaluator(e.graph, vfs, exprs, styles,
		WithMaxInstanceDepth(e.maxDepth),
		WithEvaluatorLogger(e.logger),
	)
	return e
}

// Load loads uri and everything it imports, evaluates it and queues an
// Evaluated event. Files already in the graph are not read again.
func (e *Engine) Load(ctx context.Context, uri string) (vdom.Node, error) {
	if err := e.loadDependency(ctx, uri, false); err != nil {
		return nil, err
	}
	return e.evaluate(ctx, uri)
}

// UpdateVirtualFileContent replaces the content of uri and re-evaluates it and
// every loaded document that transitively imports it, in dependency order.
// A uri that was never loaded only has its content replaced.
//
// A uri that no longer parses aborts the update and the graph keeps its
// previous content. Evaluation failures, of uri or of a dependent, do not
// stop the remaining dependents; they are returned together.
func (e *Engine) UpdateVirtualFileContent(ctx context.Context, uri, content string) error {
	if err := e.vfs.Update(ctx, uri, content); err != nil {
		return domain.NewError(domain.ErrIO, uri, "cannot update file").Wrap(err)
	}
	if _, ok := e.graph.Get(uri); !ok {
		e.logger.Debug("updated file is not loaded", "uri", uri)
		return nil
	}

	if err := e.loadDependency(ctx, uri, true); err != nil {
		return err
	}

	var result *multierror.Error
	if e.isDocument(uri) {
		// A component may only render with the props its dependents pass.
		if _, err := e.evaluate(ctx, uri); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for _, dep := range e.graph.FlattenDependents(uri) {
		if err := e.loadDependency(ctx, dep.URI, true); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if _, err := e.evaluate(ctx, dep.URI); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// DrainEvents returns the queued events and clears the queue.
func (e *Engine) DrainEvents() []domain.EngineEvent {
	events := e.events
	e.events = nil
	return events
}

// Unload is reserved for releasing a document. It does nothing yet.
func (e *Engine) Unload(uri string) {
	e.logger.Debug("unload requested", "uri", uri)
}

// EvaluatePart renders one part of a loaded document, or the whole document
// when part is empty. It queues no events and saves no snapshots.
func (e *Engine) EvaluatePart(ctx context.Context, uri, part string) (vdom.Node, error) {
	if err := e.loadDependency(ctx, uri, false); err != nil {
		return nil, err
	}
	return e.evaluatePart(ctx, uri, part)
}

// Styles evaluates the document's own stylesheet, without its imports.
func (e *Engine) Styles(ctx context.Context, uri string) (*vdom.CSSSheet, error) {
	if err := e.loadDependency(ctx, uri, false); err != nil {
		return nil, err
	}
	return e.evaluator.DocumentStyles(uri)
}

// Dependencies lists everything uri transitively imports, in the order the
// style aggregator visits them.
func (e *Engine) Dependencies(uri string) ([]string, error) {
	entries, err := e.graph.Flatten(uri)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(entries)-1)
	for _, entry := range entries[1:] {
		uris = append(uris, entry.Dependency.URI)
	}
	return uris, nil
}

// Dependents lists the loaded files that transitively import uri, in the
// order an update re-evaluates them.
func (e *Engine) Dependents(uri string) []string {
	deps := e.graph.FlattenDependents(uri)
	uris := make([]string, len(deps))
	for i, dep := range deps {
		uris[i] = dep.URI
	}
	return uris
}

// LastKnownGood returns the last tree uri evaluated to successfully.
func (e *Engine) LastKnownGood(ctx context.Context, uri string) (vdom.Node, error) {
	return e.store.Load(ctx, uri)
}

// Graph exposes the dependency graph for inspection.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

func (e *Engine) loadDependency(ctx context.Context, uri string, force bool) error {
	start := time.Now()
	var err error
	if force {
		_, err = e.graph.Reload(ctx, uri, e.vfs)
	} else {
		_, err = e.graph.LoadDependency(ctx, uri, e.vfs)
	}

	if e.hooks.OnLoad != nil {
		e.hooks.OnLoad(ctx, &domain.LoadEvent{
			EventBase: domain.EventBase{
				Timestamp: start,
				Type:      domain.EventLoad,
				URI:       uri,
				Duration:  time.Since(start),
				Err:       err,
			},
			Forced: force,
			Files:  e.graph.Len(),
		})
	}
	if err != nil {
		e.logger.Warn("failed to load dependency", "uri", uri, "forced", force, "error", err)
		return err
	}
	return nil
}

// evaluate renders the whole document, keeps it as the last known good tree
// and queues an Evaluated event.
func (e *Engine) evaluate(ctx context.Context, uri string) (vdom.Node, error) {
	node, err := e.evaluatePart(ctx, uri, "")
	if err != nil {
		return nil, err
	}
	if err := e.store.Save(ctx, uri, node); err != nil {
		e.logger.Warn("failed to save snapshot", "uri", uri, "error", err)
	}
	e.events = append(e.events, domain.Evaluated{URI: uri, Node: node})
	return node, nil
}

func (e *Engine) evaluatePart(ctx context.Context, uri, part string) (vdom.Node, error) {
	start := time.Now()
	node, err := e.evaluator.Evaluate(uri, part, e.data)

	if e.hooks.OnEvaluate != nil {
		ev := &domain.EvaluateEvent{
			EventBase: domain.EventBase{
				Timestamp: start,
				Type:      domain.EventEvaluate,
				URI:       uri,
				Duration:  time.Since(start),
				Err:       err,
			},
			Part: part,
		}
		if node != nil {
			ev.Nodes = vdom.Count(node)
		}
		e.hooks.OnEvaluate(ctx, ev)
	}
	if err != nil {
		e.logger.Error("evaluation failed", "uri", uri, "part", part, "error", err)
		return nil, wrapEvaluation(uri, err)
	}
	e.logger.Debug("evaluated", "uri", uri, "part", part, "duration", time.Since(start))
	return node, nil
}

func (e *Engine) isDocument(uri string) bool {
	dep, ok := e.graph.Get(uri)
	return ok && isDocument(dep)
}

// wrapEvaluation keeps domain errors as they are so callers can inspect them
// with errors.As.
func wrapEvaluation(uri string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("failed to evaluate %s: %w", uri, err)
}
