package graph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/aretw0/tandem/internal/logging"
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/ports"
)

// StyleSheetExt marks files parsed as standalone stylesheets.
const StyleSheetExt = ".css"

// Graph maps uris to loaded dependencies.
type Graph struct {
	deps   map[string]*Dependency
	parser ports.Parser
	logger *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// New creates an empty graph that parses files with parser.
func New(parser ports.Parser, opts ...Option) *Graph {
	g := &Graph{
		deps:   make(map[string]*Dependency),
		parser: parser,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LoadDependency returns the cached entry for uri, loading it and everything
// it imports on first use.
func (g *Graph) LoadDependency(ctx context.Context, uri string, vfs ports.VirtualFileSystem) (*Dependency, error) {
	if dep, ok := g.deps[uri]; ok {
		return dep, nil
	}
	return g.load(ctx, uri, vfs, false)
}

// Reload re-reads and re-parses uri even if it is cached. Imports that are
// already cached are reused as they are.
func (g *Graph) Reload(ctx context.Context, uri string, vfs ports.VirtualFileSystem) (*Dependency, error) {
	return g.load(ctx, uri, vfs, true)
}

// load runs one loading pass. Entries are staged and only committed when the
// whole pass succeeds, so a failure never leaves a file partially loaded.
func (g *Graph) load(ctx context.Context, uri string, vfs ports.VirtualFileSystem, force bool) (*Dependency, error) {
	p := &pass{
		graph:   g,
		vfs:     vfs,
		force:   uri,
		forced:  force,
		staged:  make(map[string]*Dependency),
		loading: make(map[string]bool),
	}
	dep, err := p.load(ctx, uri)
	if err != nil {
		return nil, err
	}
	for u, d := range p.staged {
		g.deps[u] = d
	}
	g.logger.Debug("dependency graph updated", "uri", uri, "loaded", len(p.staged), "forced", force)
	return dep, nil
}

type pass struct {
	graph   *Graph
	vfs     ports.VirtualFileSystem
	force   string
	forced  bool
	staged  map[string]*Dependency
	loading map[string]bool
}

func (p *pass) cached(uri string) (*Dependency, bool) {
	if dep, ok := p.staged[uri]; ok {
		return dep, true
	}
	if p.forced && uri == p.force {
		return nil, false
	}
	dep, ok := p.graph.deps[uri]
	return dep, ok
}

func (p *pass) load(ctx context.Context, uri string) (*Dependency, error) {
	if dep, ok := p.cached(uri); ok {
		return dep, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.loading[uri] = true
	defer delete(p.loading, uri)

	source, err := p.read(ctx, uri)
	if err != nil {
		return nil, err
	}

	dep := &Dependency{URI: uri, Dependencies: make(map[string]string)}
	if path.Ext(uri) == StyleSheetExt {
		sheet, err := p.graph.parser.ParseStyleSheet(source)
		if err != nil {
			return nil, parseError(uri, err)
		}
		dep.Content = &StyleSheetContent{Sheet: sheet}
		p.staged[uri] = dep
		return dep, nil
	}

	root, err := p.graph.parser.ParseDocument(source)
	if err != nil {
		return nil, parseError(uri, err)
	}
	dep.Content = &DocumentContent{Root: root}

	for _, imp := range ast.Imports(root) {
		src, _ := ast.AttrValue(imp, "src")
		resolved, err := p.vfs.Resolve(uri, src)
		if err != nil {
			return nil, domain.NewError(domain.ErrResolution, uri, "cannot resolve import %q", src).At(imp.Location).Wrap(err)
		}
		dep.Imports = append(dep.Imports, resolved)
		dep.Dependencies[ast.ImportName(imp)] = resolved

		// A cycle back to a file still being loaded is fine: it is staged
		// before this pass commits.
		if p.loading[resolved] {
			continue
		}
		if _, err := p.load(ctx, resolved); err != nil {
			return nil, fmt.Errorf("failed to load import %q of %s: %w", src, uri, err)
		}
	}

	p.staged[uri] = dep
	return dep, nil
}

func (p *pass) read(ctx context.Context, uri string) (string, error) {
	exists, err := p.vfs.Exists(ctx, uri)
	if err != nil {
		return "", domain.NewError(domain.ErrIO, uri, "cannot stat file").Wrap(err)
	}
	if !exists {
		return "", domain.NewError(domain.ErrIO, uri, "file not found").Wrap(fs.ErrNotExist)
	}
	source, err := p.vfs.Read(ctx, uri)
	if err != nil {
		return "", domain.NewError(domain.ErrIO, uri, "cannot read file").Wrap(err)
	}
	return source, nil
}

// parseError attributes a parser failure to uri.
func parseError(uri string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) && de.URI == "" {
		de.URI = uri
		return de
	}
	if errors.Is(err, domain.ErrParse) {
		return err
	}
	return domain.NewError(domain.ErrParse, uri, "malformed source").Wrap(err)
}

// Get returns the loaded entry for uri.
func (g *Graph) Get(uri string) (*Dependency, bool) {
	dep, ok := g.deps[uri]
	return dep, ok
}

// URIs returns every loaded uri in lexical order.
func (g *Graph) URIs() []string {
	uris := make([]string, 0, len(g.deps))
	for uri := range g.deps {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Len returns the number of loaded files.
func (g *Graph) Len() int {
	return len(g.deps)
}

// Flatten returns uri and everything it transitively imports, depth-first in
// import declaration order. Each uri appears once, paired with the importer
// that reached it first.
func (g *Graph) Flatten(uri string) ([]FlatEntry, error) {
	root, ok := g.deps[uri]
	if !ok {
		return nil, domain.NewError(domain.ErrResolution, uri, "dependency is not loaded")
	}
	var entries []FlatEntry
	seen := make(map[string]bool)
	var visit func(dep, dependent *Dependency)
	visit = func(dep, dependent *Dependency) {
		if seen[dep.URI] {
			return
		}
		seen[dep.URI] = true
		entries = append(entries, FlatEntry{Dependency: dep, Dependent: dependent})
		for _, imp := range dep.Imports {
			if child, ok := g.deps[imp]; ok {
				visit(child, dep)
			}
		}
	}
	visit(root, nil)
	return entries, nil
}

// FlattenDependents returns every loaded file that transitively imports uri,
// breadth-first. uri itself is never included, even when it sits on a cycle.
func (g *Graph) FlattenDependents(uri string) []*Dependency {
	uris := g.URIs()
	seen := map[string]bool{uri: true}
	queue := []string{uri}
	var dependents []*Dependency
	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]
		for _, u := range uris {
			if seen[u] {
				continue
			}
			dep := g.deps[u]
			if dep.ImportsURI(target) {
				seen[u] = true
				dependents = append(dependents, dep)
				queue = append(queue, u)
			}
		}
	}
	return dependents
}
