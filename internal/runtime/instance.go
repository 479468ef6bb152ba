package runtime

import (
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
)

func (e *Evaluator) evaluateImportedComponent(el *ast.Element, ctx Context) (vdom.Node, error) {
	depURI, ok := ctx.dep.Dependencies[el.TagName]
	if !ok {
		return nil, domain.NewError(domain.ErrResolution, ctx.uri, "import %q is not resolved", el.TagName).At(el.OpenTagLocation)
	}
	return e.evaluateComponentInstance(el, depURI, ctx)
}

// evaluateSelf instantiates the current document inside itself. The top-level
// render may not do this, which stops unbounded recursion at the root.
func (e *Evaluator) evaluateSelf(el *ast.Element, ctx Context) (vdom.Node, error) {
	if ctx.fromMain {
		return nil, domain.NewError(domain.ErrSemantic, ctx.uri,
			"<self /> cannot be used in the top-level document since it would recurse forever").At(el.OpenTagLocation)
	}
	return e.evaluateComponentInstance(el, ctx.uri, ctx)
}

// evaluateComponentInstance renders the document at depURI with bindings
// taken from el. Instances are never the top-level document.
func (e *Evaluator) evaluateComponentInstance(el *ast.Element, depURI string, ctx Context) (vdom.Node, error) {
	dep, ok := e.graph.Get(depURI)
	if !ok {
		return nil, domain.NewError(domain.ErrResolution, ctx.uri, "dependency %s is not loaded", depURI).At(el.OpenTagLocation)
	}
	root, ok := dep.Document()
	if !ok {
		return nil, domain.NewError(domain.ErrResolution, ctx.uri, "%s is not a component", depURI).At(el.OpenTagLocation)
	}
	if err := e.checkDepth(el, ctx); err != nil {
		return nil, err
	}

	data, err := e.instanceData(el, ctx)
	if err != nil {
		return nil, err
	}
	child := ctx.instance(dep, root, data, false)
	return e.evaluateNode(root, true, child)
}

// evaluatePartInstance renders a part of the current document with bindings
// taken from el.
func (e *Evaluator) evaluatePartInstance(el *ast.Element, ctx Context) (vdom.Node, error) {
	part, ok := ast.PartByID(ctx.root, el.TagName)
	if !ok {
		return nil, domain.NewError(domain.ErrResolution, ctx.uri, "part %q not found", el.TagName).At(el.OpenTagLocation)
	}
	if err := e.checkDepth(el, ctx); err != nil {
		return nil, err
	}

	data, err := e.instanceData(el, ctx)
	if err != nil {
		return nil, err
	}
	child := ctx.instance(ctx.dep, ctx.root, data, ctx.fromMain)
	return e.evaluateElement(part, true, child)
}

func (e *Evaluator) checkDepth(el *ast.Element, ctx Context) error {
	if e.maxDepth > 0 && ctx.depth >= e.maxDepth {
		return domain.NewError(domain.ErrSemantic, ctx.uri,
			"maximum instance depth (%d) exceeded at <%s>", e.maxDepth, el.TagName).At(el.OpenTagLocation)
	}
	return nil
}
