// Package css parses stylesheets with douceur and scopes them for rendering.
package css

import (
	"strings"

	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Parse parses a stylesheet into the document AST form.
func Parse(source string) (*ast.StyleSheet, error) {
	sheet, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return &ast.StyleSheet{Rules: convertRules(sheet.Rules)}, nil
}

func convertRules(rules []*css.Rule) []*ast.StyleRule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]*ast.StyleRule, 0, len(rules))
	for _, r := range rules {
		rule := &ast.StyleRule{
			Prelude:   r.Prelude,
			Selectors: r.Selectors,
			Rules:     convertRules(r.Rules),
		}
		if r.Kind == css.AtRule {
			rule.Kind = ast.AtRule
			rule.Name = strings.TrimPrefix(r.Name, "@")
		}
		for _, d := range r.Declarations {
			rule.Declarations = append(rule.Declarations, ast.Declaration{
				Property:  d.Property,
				Value:     d.Value,
				Important: d.Important,
			})
		}
		out = append(out, rule)
	}
	return out
}
