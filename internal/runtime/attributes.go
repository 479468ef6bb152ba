package runtime

import (
	"strings"

	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/value"
	"github.com/aretw0/tandem/pkg/vdom"
)

// evaluateAttributes renders the attributes of a plain element. Ids are
// taken in attribute order, after each value is evaluated.
func (e *Evaluator) evaluateAttributes(el *ast.Element, ctx Context) ([]vdom.Attribute, error) {
	var attrs []vdom.Attribute
	for _, attr := range el.Attributes {
		switch a := attr.(type) {
		case *ast.KeyValueAttribute:
			var v *string
			if a.Value != nil {
				raw, err := e.evaluateAttributeValue(a.Value, ctx)
				if err != nil {
					return nil, err
				}
				s := value.String(raw)
				v = &s
			}
			if a.Name == "src" && v != nil && isRelativePath(*v) {
				resolved, err := e.vfs.Resolve(ctx.uri, *v)
				if err != nil {
					e.logger.Debug("dropping unresolvable src", "uri", ctx.uri, "src", *v, "error", err)
					continue
				}
				v = &resolved
			}
			attrs = append(attrs, vdom.Attribute{ID: ctx.nextID(), Name: a.Name, Value: v})

		case *ast.ShorthandAttribute:
			name, err := shorthandName(a, ctx)
			if err != nil {
				return nil, err
			}
			raw, err := e.evaluateExpression(a.Reference, ctx)
			if err != nil {
				return nil, err
			}
			if raw == nil {
				continue
			}
			s := value.String(raw)
			attrs = append(attrs, vdom.Attribute{ID: ctx.nextID(), Name: name, Value: &s})
		}
	}
	return attrs, nil
}

func (e *Evaluator) evaluateAttributeValue(v ast.AttributeValue, ctx Context) (any, error) {
	switch av := v.(type) {
	case *ast.StringValue:
		return av.Value, nil
	case *ast.SlotValue:
		return e.evaluateExpression(av.Script, ctx)
	}
	return nil, nil
}

// instanceData builds the bindings of a component or part instance from its
// attributes and children. It runs in the caller's context, so it consumes
// ids from the caller's counter.
func (e *Evaluator) instanceData(el *ast.Element, ctx Context) (map[string]any, error) {
	ctx = ctx.withInPart(false)
	data := make(map[string]any, len(el.Attributes)+1)
	for _, attr := range el.Attributes {
		switch a := attr.(type) {
		case *ast.KeyValueAttribute:
			if a.Value == nil {
				data[a.Name] = true
				continue
			}
			v, err := e.evaluateAttributeValue(a.Value, ctx)
			if err != nil {
				return nil, err
			}
			data[a.Name] = v
		case *ast.ShorthandAttribute:
			name, err := shorthandName(a, ctx)
			if err != nil {
				return nil, err
			}
			v, err := e.evaluateExpression(a.Reference, ctx)
			if err != nil {
				return nil, err
			}
			data[name] = v
		}
	}

	children, err := e.evaluateChildren(el.Children, ctx)
	if err != nil {
		return nil, err
	}
	boxed := make([]any, len(children))
	for i, child := range children {
		boxed[i] = child
	}
	data["children"] = boxed
	return data, nil
}

// shorthandName is the attribute name implied by `{name}`. Only plain
// single-segment references name an attribute.
func shorthandName(a *ast.ShorthandAttribute, ctx Context) (string, error) {
	if len(a.Reference.Path) != 1 {
		return "", domain.NewError(domain.ErrSemantic, ctx.uri,
			"shorthand attribute {%s} must be a plain identifier", a.Reference.Source).At(a.Location)
	}
	return a.Reference.Path[0], nil
}

// isRelativePath reports whether a src value points at a file next to the
// document rather than an absolute path, a uri or inline data.
func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "#") {
		return false
	}
	if strings.HasPrefix(p, "data:") || strings.Contains(p, "://") {
		return false
	}
	return true
}
