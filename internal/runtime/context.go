package runtime

import (
	"fmt"
	"hash/crc32"
	"maps"
	"strconv"

	"github.com/aretw0/tandem/internal/graph"
	"github.com/aretw0/tandem/pkg/ast"
)

// idCounter is the only mutable state of an evaluation pass. Every context
// created at an instantiation boundary gets its own cell; plain copies of a
// Context share it.
type idCounter struct {
	seed  string
	count int
}

func (c *idCounter) next() string {
	c.count++
	return fmt.Sprintf("%s-%d", c.seed, c.count)
}

// Context is an immutable snapshot of where the evaluator is: which document,
// which bindings, which instantiation depth. It is passed by value; deriving a
// variant never affects the caller's copy.
type Context struct {
	dep       *graph.Dependency
	root      ast.Node
	uri       string
	importIDs map[string]bool
	partIDs   map[string]bool
	scope     string
	data      map[string]any
	inPart    bool
	fromMain  bool
	depth     int
	ids       *idCounter
}

// Seed derives the id seed of a context for uri created when the parent
// counter was at parentCount.
func Seed(uri string, parentCount int) string {
	return hash(fmt.Sprintf("%s-%d", uri, parentCount))
}

// Scope derives the style scope token of a document.
func Scope(uri string) string {
	return hash(uri)
}

func hash(s string) string {
	return strconv.FormatUint(uint64(crc32.ChecksumIEEE([]byte(s))), 16)
}

func set(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}

// newContext creates the context for evaluating dep's document with data.
func newContext(dep *graph.Dependency, root ast.Node, data map[string]any, parentCount int, fromMain bool, depth int) Context {
	return Context{
		dep:       dep,
		root:      root,
		uri:       dep.URI,
		importIDs: set(ast.ImportIDs(root)),
		partIDs:   set(ast.PartIDs(root)),
		scope:     Scope(dep.URI),
		data:      data,
		fromMain:  fromMain,
		depth:     depth,
		ids:       &idCounter{seed: Seed(dep.URI, parentCount)},
	}
}

func (c Context) nextID() string {
	return c.ids.next()
}

// instance derives the context of a component or part instantiated here.
// Like iteration, it advances the parent counter first, so sibling instances
// of one component never share a seed.
func (c Context) instance(dep *graph.Dependency, root ast.Node, data map[string]any, fromMain bool) Context {
	c.ids.count++
	return newContext(dep, root, data, c.ids.count, fromMain, c.depth+1)
}

// iteration derives the context of one each-loop iteration. The parent
// counter is advanced so sibling iterations get disjoint id spaces.
func (c Context) iteration(bindings map[string]any) Context {
	c.ids.count++
	child := c
	child.data = maps.Clone(c.data)
	if child.data == nil {
		child.data = make(map[string]any, len(bindings))
	}
	maps.Copy(child.data, bindings)
	child.ids = &idCounter{seed: Seed(c.uri, c.ids.count)}
	return child
}

func (c Context) withInPart(inPart bool) Context {
	c.inPart = inPart
	return c
}
