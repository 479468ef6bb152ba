package runtime

import (
	"errors"
	"log/slog"

	"github.com/aretw0/tandem/internal/graph"
	"github.com/aretw0/tandem/internal/logging"
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/ports"
	"github.com/aretw0/tandem/pkg/value"
	"github.com/aretw0/tandem/pkg/vdom"
)

// DefaultMaxInstanceDepth bounds nested component instantiation.
const DefaultMaxInstanceDepth = 128

// Evaluator turns loaded documents into virtual trees. It holds no state
// between calls.
type Evaluator struct {
	graph    *graph.Graph
	vfs      ports.VirtualFileSystem
	exprs    ports.ExpressionEvaluator
	styles   ports.StyleEvaluator
	maxDepth int
	logger   *slog.Logger
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithMaxInstanceDepth overrides DefaultMaxInstanceDepth.
func WithMaxInstanceDepth(depth int) EvaluatorOption {
	return func(e *Evaluator) {
		e.maxDepth = depth
	}
}

// WithEvaluatorLogger sets the logger.
func WithEvaluatorLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates an Evaluator over g.
func NewEvaluator(g *graph.Graph, vfs ports.VirtualFileSystem, exprs ports.ExpressionEvaluator, styles ports.StyleEvaluator, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		graph:    g,
		vfs:      vfs,
		exprs:    exprs,
		styles:   styles,
		maxDepth: DefaultMaxInstanceDepth,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate renders the loaded document at uri with data bound at the top
// level. When part is not empty only that part is rendered. The aggregated
// stylesheet is always the first child of the result.
func (e *Evaluator) Evaluate(uri, part string, data map[string]any) (vdom.Node, error) {
	dep, root, err := e.document(uri)
	if err != nil {
		return nil, err
	}
	ctx := newContext(dep, root, data, 0, true, 0)

	var node vdom.Node
	if part != "" {
		el, ok := ast.PartByID(root, part)
		if !ok {
			return nil, domain.NewError(domain.ErrResolution, uri, "part %q not found", part)
		}
		node, err = e.evaluateElement(el, true, ctx)
	} else {
		node, err = e.evaluateNode(root, true, ctx)
	}
	if err != nil {
		return nil, err
	}
	if node == nil {
		node = &vdom.Fragment{}
	}

	style, err := e.evaluateJumboStyle(ctx)
	if err != nil {
		return nil, err
	}
	return vdom.PrependChild(node, style), nil
}

// document looks up a loaded document.
func (e *Evaluator) document(uri string) (*graph.Dependency, ast.Node, error) {
	dep, ok := e.graph.Get(uri)
	if !ok {
		return nil, nil, domain.NewError(domain.ErrResolution, uri, "dependency is not loaded")
	}
	root, ok := dep.Document()
	if !ok {
		return nil, nil, domain.NewError(domain.ErrResolution, uri, "not a document")
	}
	return dep, root, nil
}

func (e *Evaluator) evaluateNode(node ast.Node, isRoot bool, ctx Context) (vdom.Node, error) {
	switch n := node.(type) {
	case *ast.Element:
		return e.evaluateElement(n, isRoot, ctx)
	case *ast.Text:
		return &vdom.Text{ID: ctx.nextID(), Value: n.Value}, nil
	case *ast.Slot:
		return e.evaluateSlot(n, ctx)
	case *ast.Fragment:
		return e.evaluateChildrenAsFragment(n.Children, ctx)
	case *ast.PassFailBlock:
		return e.evaluatePassFail(n, ctx)
	case *ast.FinalBlock:
		return e.evaluateOptional(n.Body, ctx)
	case *ast.EachBlock:
		return e.evaluateEach(n, ctx)
	case *ast.StyleElement, *ast.Comment, nil:
		return nil, nil
	}
	return nil, domain.NewError(domain.ErrSemantic, ctx.uri, "unsupported node %T", node)
}

func (e *Evaluator) evaluateChildren(children []ast.Node, ctx Context) ([]vdom.Node, error) {
	var out []vdom.Node
	for _, child := range children {
		node, err := e.evaluateNode(child, false, ctx)
		if err != nil {
			return nil, err
		}
		if node != nil {
			out = append(out, node)
		}
	}
	return out, nil
}

// evaluateChildrenAsFragment collapses to the only surviving child.
func (e *Evaluator) evaluateChildrenAsFragment(children []ast.Node, ctx Context) (vdom.Node, error) {
	out, err := e.evaluateChildren(children, ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return &vdom.Fragment{Children: out}, nil
}

func (e *Evaluator) evaluateOptional(node ast.Node, ctx Context) (vdom.Node, error) {
	if node == nil {
		return nil, nil
	}
	return e.evaluateNode(node, false, ctx)
}

func (e *Evaluator) evaluateSlot(slot *ast.Slot, ctx Context) (vdom.Node, error) {
	result, err := e.evaluateExpression(slot.Script, ctx)
	if err != nil {
		return nil, err
	}
	if items, ok := value.List(result); ok {
		children := make([]vdom.Node, 0, len(items))
		for _, item := range items {
			if node, ok := value.Node(item); ok {
				children = append(children, node)
				continue
			}
			children = append(children, &vdom.Text{ID: ctx.nextID(), Value: value.String(item)})
		}
		return &vdom.Fragment{Children: children}, nil
	}
	if node, ok := value.Node(result); ok {
		return node, nil
	}
	return &vdom.Text{ID: ctx.nextID(), Value: value.String(result)}, nil
}

// evaluateExpression delegates to the expression evaluator and attributes
// failures to the current document.
func (e *Evaluator) evaluateExpression(expr ast.Expression, ctx Context) (any, error) {
	result, err := e.exprs.Evaluate(expr, ctx.data)
	if err == nil {
		return result, nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return nil, err
	}
	return nil, domain.NewError(domain.ErrExpression, ctx.uri, "cannot evaluate %q", expr.Source).At(expr.Location).Wrap(err)
}

func (e *Evaluator) evaluateElement(el *ast.Element, isRoot bool, ctx Context) (vdom.Node, error) {
	switch el.TagName {
	case ast.TagImport, ast.TagPreview, ast.TagScript, ast.TagProperty, ast.TagLogic:
		return nil, nil
	case ast.TagPart:
		if !isRoot {
			return nil, nil
		}
		return e.evaluateChildrenAsFragment(el.Children, ctx.withInPart(true))
	case ast.TagSelf:
		return e.evaluateSelf(el, ctx)
	}
	if ctx.importIDs[el.TagName] {
		return e.evaluateImportedComponent(el, ctx)
	}
	if ctx.partIDs[el.TagName] {
		return e.evaluatePartInstance(el, ctx)
	}
	return e.evaluateBasicElement(el, ctx)
}

func (e *Evaluator) evaluateBasicElement(el *ast.Element, ctx Context) (vdom.Node, error) {
	attrs, err := e.evaluateAttributes(el, ctx)
	if err != nil {
		return nil, err
	}
	attrs = append(attrs, vdom.Attribute{ID: ctx.nextID(), Name: "data-pc-" + ctx.scope})

	children, err := e.evaluateChildren(el.Children, ctx)
	if err != nil {
		return nil, err
	}
	return &vdom.Element{
		ID:             ctx.nextID(),
		SourceURI:      ctx.uri,
		SourceLocation: el.Location,
		TagName:        el.TagName,
		Attributes:     attrs,
		Children:       children,
	}, nil
}
