package runtime

import (
	"github.com/aretw0/tandem/internal/graph"
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
)

// evaluateJumboStyle aggregates the styles of everything the current document
// imports, followed by its own, into one style element. Imported rules come
// first so the importing document wins on equal specificity.
func (e *Evaluator) evaluateJumboStyle(ctx Context) (*vdom.StyleElement, error) {
	entries, err := e.graph.Flatten(ctx.uri)
	if err != nil {
		return nil, err
	}

	sheet := &vdom.CSSSheet{}
	for _, entry := range entries {
		dep := entry.Dependency
		if dep.URI == ctx.uri {
			continue
		}
		switch {
		case isDocument(dep):
			own, err := e.DocumentStyles(dep.URI)
			if err != nil {
				return nil, err
			}
			sheet.Extend(own)
		default:
			raw, _ := dep.StyleSheet()
			scope := Scope(dep.URI)
			if entry.Dependent != nil {
				scope = Scope(entry.Dependent.URI)
			}
			evaluated, err := e.evaluateStyleSheet(raw, dep.URI, scope)
			if err != nil {
				return nil, err
			}
			sheet.Extend(evaluated)
		}
	}

	own, err := e.DocumentStyles(ctx.uri)
	if err != nil {
		return nil, err
	}
	sheet.Extend(own)

	return &vdom.StyleElement{ID: ctx.nextID(), Sheet: sheet}, nil
}

// DocumentStyles evaluates the root-level style elements of the document at
// uri, scoped to that document. Imports do not contribute.
func (e *Evaluator) DocumentStyles(uri string) (*vdom.CSSSheet, error) {
	dep, ok := e.graph.Get(uri)
	if !ok {
		return nil, domain.NewError(domain.ErrResolution, uri, "dependency is not loaded")
	}
	if raw, ok := dep.StyleSheet(); ok {
		return e.evaluateStyleSheet(raw, uri, Scope(uri))
	}

	root, _ := dep.Document()
	sheet := &vdom.CSSSheet{}
	scope := Scope(uri)
	for _, style := range ast.StyleElements(root) {
		evaluated, err := e.evaluateStyleSheet(style.Sheet, uri, scope)
		if err != nil {
			return nil, err
		}
		sheet.Extend(evaluated)
	}
	return sheet, nil
}

func (e *Evaluator) evaluateStyleSheet(raw *ast.StyleSheet, uri, scope string) (*vdom.CSSSheet, error) {
	sheet, err := e.styles.EvaluateStyleSheet(raw, uri, scope, e.vfs)
	if err != nil {
		return nil, domain.NewError(domain.ErrResolution, uri, "cannot evaluate stylesheet").Wrap(err)
	}
	return sheet, nil
}

func isDocument(dep *graph.Dependency) bool {
	_, ok := dep.Document()
	return ok
}
