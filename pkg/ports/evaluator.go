package ports

import (
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/vdom"
)

// ExpressionEvaluator evaluates embedded expressions. data is read-only; the
// result may be any value, including a vdom.Node passed in as children.
type ExpressionEvaluator interface {
	Evaluate(expr ast.Expression, data map[string]any) (any, error)
}

// StyleEvaluator scopes a stylesheet: every selector is restricted to elements
// carrying the data-pc-{scope} attribute. uri is the stylesheet's own uri and
// is used to resolve relative url() references through vfs.
type StyleEvaluator interface {
	EvaluateStyleSheet(sheet *ast.StyleSheet, uri, scope string, vfs VirtualFileSystem) (*vdom.CSSSheet, error)
}
