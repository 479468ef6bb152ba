package runtime

import (
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/value"
	"github.com/aretw0/tandem/pkg/vdom"
)

// evaluatePassFail walks an if / else-if / else chain. A truthy link with no
// body falls through to the rest of the chain.
func (e *Evaluator) evaluatePassFail(block *ast.PassFailBlock, ctx Context) (vdom.Node, error) {
	cond, err := e.evaluateExpression(block.Condition, ctx)
	if err != nil {
		return nil, err
	}
	if value.Truthy(cond) && block.Body != nil {
		return e.evaluateNode(block.Body, false, ctx)
	}
	if block.Fail == nil {
		return nil, nil
	}
	return e.evaluateNode(block.Fail, false, ctx)
}

// evaluateEach renders the body once per list item. The result is always a
// Fragment, even with a single item. A source that is not a list renders as
// an empty Fragment.
func (e *Evaluator) evaluateEach(block *ast.EachBlock, ctx Context) (vdom.Node, error) {
	if block.Body == nil {
		return nil, nil
	}
	source, err := e.evaluateExpression(block.Source, ctx)
	if err != nil {
		return nil, err
	}
	items, ok := value.List(source)
	if !ok {
		if source != nil {
			e.logger.Debug("each source is not a list", "uri", ctx.uri, "source", block.Source.Source)
		}
		return &vdom.Fragment{}, nil
	}

	children := make([]vdom.Node, 0, len(items))
	for index, item := range items {
		bindings := map[string]any{block.ValueName: item}
		if block.KeyName != "" {
			bindings[block.KeyName] = index
		}
		node, err := e.evaluateNode(block.Body, false, ctx.iteration(bindings))
		if err != nil {
			return nil, err
		}
		if node != nil {
			children = append(children, node)
		}
	}
	return &vdom.Fragment{Children: children}, nil
}
