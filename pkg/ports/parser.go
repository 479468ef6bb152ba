package ports

import "github.com/aretw0/tandem/pkg/ast"

// Parser turns source text into an AST. Errors should wrap domain.ErrParse.
type Parser interface {
	// ParseDocument parses a component document. The root is a Fragment.
	ParseDocument(source string) (ast.Node, error)

	// ParseStyleSheet parses a standalone stylesheet or a <style> body.
	ParseStyleSheet(source string) (*ast.StyleSheet, error)
}
