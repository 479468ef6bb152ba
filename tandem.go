package tandem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/tandem/internal/compiler"
	"github.com/aretw0/tandem/internal/logging"
	"github.com/aretw0/tandem/internal/runtime"
	"github.com/aretw0/tandem/pkg/adapters/css"
	"github.com/aretw0/tandem/pkg/adapters/exprlang"
	"github.com/aretw0/tandem/pkg/adapters/vfs"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/observability"
	"github.com/aretw0/tandem/pkg/ports"
	"github.com/aretw0/tandem/pkg/vdom"
)

// DocumentExt is the extension of component documents.
const DocumentExt = ".pc"

// Engine is the high-level entry point for the Tandem library.
// It wraps the internal runtime with the default parser, expression language
// and stylesheet evaluator, and a copy-on-write file system rooted at a
// project directory.
type Engine struct {
	runtime     *runtime.Engine
	fs          ports.VirtualFileSystem
	root        string
	runtimeOpts []runtime.EngineOption
	hooks       []domain.LifecycleHooks
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithFileSystem replaces the default file system rooted at the project
// directory.
func WithFileSystem(fs ports.VirtualFileSystem) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. It may be given more
// than once; every set of hooks is called, in order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithSnapshotStore keeps last known good trees in store instead of memory.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSnapshotStore(store))
	}
}

// WithData binds data at the top level of every evaluated document.
func WithData(data map[string]any) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithData(data))
	}
}

// WithInstanceDepth bounds nested component instantiation.
func WithInstanceDepth(depth int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithInstanceDepth(depth))
	}
}

// New initializes a new Tandem Engine serving the documents under root.
// If WithFileSystem is provided, root only labels the engine and resolves
// relative names passed to URI.
func New(root string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.root = abs
		eng.Name = filepath.Base(abs)
		eng.logger = eng.logger.With("project", eng.Name)
	}

	if eng.fs == nil {
		if eng.root == "" {
			return nil, fmt.Errorf("root is required when no custom file system is provided")
		}
		fs, err := vfs.NewOS(eng.root, vfs.WithLogger(eng.logger))
		if err != nil {
			return nil, err
		}
		eng.fs = fs
	}

	runtimeOpts := append([]runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(observability.Combine(eng.hooks...)),
	}, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(
		eng.fs,
		compiler.NewParser(),
		exprlang.New(),
		css.NewEvaluator(),
		runtimeOpts...,
	)
	return eng, nil
}

// Root returns the absolute project directory, or "" when none was given.
func (e *Engine) Root() string {
	return e.root
}

// URI turns a document name into a file uri. Uris are returned as is and
// relative paths are taken from the project root.
func (e *Engine) URI(name string) string {
	if strings.Contains(name, "://") {
		return name
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(e.root, name)
	}
	return vfs.FileURI(filepath.Clean(name))
}

// Documents lists every component document under the project root.
func (e *Engine) Documents() ([]string, error) {
	lister, ok := e.fs.(interface {
		Documents(dir string, exts ...string) ([]string, error)
	})
	if !ok || e.root == "" {
		return nil, fmt.Errorf("current file system cannot list documents")
	}
	return lister.Documents(e.root, DocumentExt)
}

// Load evaluates uri, loading its dependencies on first use.
func (e *Engine) Load(ctx context.Context, uri string) (vdom.Node, error) {
	return e.runtime.Load(ctx, uri)
}

// Render evaluates the part of uri, or the whole document when part is
// empty, and serializes it to HTML.
func (e *Engine) Render(ctx context.Context, uri, part string) (string, error) {
	node, err := e.runtime.EvaluatePart(ctx, uri, part)
	if err != nil {
		return "", err
	}
	return vdom.HTML(node), nil
}

// UpdateVirtualFileContent replaces the content of uri and re-evaluates
// every loaded document that depends on it.
func (e *Engine) UpdateVirtualFileContent(ctx context.Context, uri, content string) error {
	return e.runtime.UpdateVirtualFileContent(ctx, uri, content)
}

// Refresh re-reads uri from disk, discarding any unsaved update, and
// propagates the change.
func (e *Engine) Refresh(ctx context.Context, uri string) error {
	reader, ok := e.fs.(interface {
		ReadBase(ctx context.Context, uri string) (string, error)
	})
	if !ok {
		return fmt.Errorf("current file system cannot refresh from disk")
	}
	content, err := reader.ReadBase(ctx, uri)
	if err != nil {
		return domain.NewError(domain.ErrIO, uri, "failed to read file").Wrap(err)
	}
	return e.runtime.UpdateVirtualFileContent(ctx, uri, content)
}

// DrainEvents returns and clears the queued evaluation events.
func (e *Engine) DrainEvents() []domain.EngineEvent {
	return e.runtime.DrainEvents()
}

// Unload is accepted for hosts that close documents. Loaded files stay in
// the graph.
func (e *Engine) Unload(uri string) {
	e.runtime.Unload(uri)
}

// EvaluatePart evaluates a named part of uri, or the whole document.
func (e *Engine) EvaluatePart(ctx context.Context, uri, part string) (vdom.Node, error) {
	return e.runtime.EvaluatePart(ctx, uri, part)
}

// Styles evaluates the stylesheet of uri alone.
func (e *Engine) Styles(ctx context.Context, uri string) (*vdom.CSSSheet, error) {
	return e.runtime.Styles(ctx, uri)
}

// Dependencies lists everything uri reaches, in evaluation order.
func (e *Engine) Dependencies(uri string) ([]string, error) {
	return e.runtime.Dependencies(uri)
}

// Imports lists the direct imports of a loaded uri in declaration order.
func (e *Engine) Imports(uri string) ([]string, error) {
	dep, ok := e.runtime.Graph().Get(uri)
	if !ok {
		return nil, domain.NewError(domain.ErrResolution, uri, "not loaded")
	}
	return append([]string(nil), dep.Imports...), nil
}

// Dependents lists the loaded documents that would be re-evaluated if uri
// changed.
func (e *Engine) Dependents(uri string) []string {
	return e.runtime.Dependents(uri)
}

// LastKnownGood returns the last tree evaluated without error for uri.
func (e *Engine) LastKnownGood(ctx context.Context, uri string) (vdom.Node, error) {
	return e.runtime.LastKnownGood(ctx, uri)
}

// Watch returns a channel that receives the uri of every file changed on
// disk. Returns an error if the file system does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.fs.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, errors.New("current file system does not support watching")
}
