// Package exprlang evaluates embedded expressions with expr-lang/expr.
package exprlang

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/tandem/pkg/ast"
	"github.com/expr-lang/expr"
	exprast "github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Evaluator implements ports.ExpressionEvaluator. Compiled programs are cached
// by source and by the builtins the bindings shadow, so re-evaluating a
// document after an edit only compiles the expressions that changed.
type Evaluator struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
	vm       vm.VM
}

// New creates an Evaluator with an empty program cache.
func New() *Evaluator {
	return &Evaluator{programs: make(map[string]*vm.Program)}
}

// Evaluate runs e against data. Plain reference paths are looked up directly,
// yielding nil for missing segments instead of failing.
func (ev *Evaluator) Evaluate(e ast.Expression, data map[string]any) (any, error) {
	if e.IsReference() {
		if v, ok := lookup(data, e.Path); ok {
			return v, nil
		}
	}

	ev.mu.Lock()
	defer ev.mu.Unlock()

	program, err := ev.compile(e.Source, shadowed(data))
	if err != nil {
		return nil, err
	}
	result, err := ev.vm.Run(program, env(data))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", e.Source, err)
	}
	return result, nil
}

// compile compiles source against an untyped map env, so identifiers are
// fetched from the bindings at run time. Builtins named like a binding are
// disabled so the binding wins.
func (ev *Evaluator) compile(source string, disabled []string) (*vm.Program, error) {
	key := source
	if len(disabled) > 0 {
		key = source + "\x00" + strings.Join(disabled, ",")
	}
	if program, ok := ev.programs[key]; ok {
		return program, nil
	}
	opts := []expr.Option{expr.Env(map[string]any{}), expr.AllowUndefinedVariables()}
	for _, name := range disabled {
		opts = append(opts, expr.DisableBuiltin(name))
	}
	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", source, err)
	}
	ev.programs[key] = program
	return program, nil
}

// shadowed returns the sorted binding names that collide with builtins.
func shadowed(data map[string]any) []string {
	var names []string
	for name := range data {
		if _, ok := builtin.Index[name]; ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// CacheSize returns the number of compiled programs held.
func (ev *Evaluator) CacheSize() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return len(ev.programs)
}

func env(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return data
}

// lookup walks path through nested maps. It reports false when an
// intermediate value is not a map, leaving the general evaluator to decide.
func lookup(data map[string]any, path []string) (any, bool) {
	var cur any = data
	for _, seg := range path {
		switch m := cur.(type) {
		case nil:
			return nil, true
		case map[string]any:
			cur = m[seg]
		case map[string]string:
			v, ok := m[seg]
			if !ok {
				return nil, true
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// Check reports whether source is a syntactically valid expression.
func Check(source string) error {
	if _, err := parser.Parse(source); err != nil {
		return err
	}
	return nil
}

// ReferencePath returns the segments of source when it is a plain reference
// such as `item` or `props.title`, and nil otherwise.
func ReferencePath(source string) []string {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil
	}
	return referencePath(tree.Node)
}

func referencePath(node exprast.Node) []string {
	switch n := node.(type) {
	case *exprast.IdentifierNode:
		return []string{n.Value}
	case *exprast.MemberNode:
		if n.Optional || n.Method {
			return nil
		}
		prop, ok := n.Property.(*exprast.StringNode)
		if !ok {
			return nil
		}
		head := referencePath(n.Node)
		if head == nil {
			return nil
		}
		return append(head, prop.Value)
	}
	return nil
}
