package graph

import (
	"slices"

	"github.com/aretw0/tandem/pkg/ast"
)

// Content is the parsed form of a file: a document or a stylesheet.
type Content interface {
	isContent()
}

// DocumentContent is a parsed component document.
type DocumentContent struct {
	Root ast.Node
}

// StyleSheetContent is a parsed standalone stylesheet.
type StyleSheetContent struct {
	Sheet *ast.StyleSheet
}

func (*DocumentContent) isContent()   {}
func (*StyleSheetContent) isContent() {}

// Dependency is one loaded file. It is immutable once inserted until the uri
// is reloaded.
type Dependency struct {
	URI     string
	Content Content

	// Imports holds the resolved uri of every import in declaration order.
	Imports []string

	// Dependencies maps the local name of an import (its id, or its src when
	// it has none) to the resolved uri.
	Dependencies map[string]string
}

// Document returns the document root, if this dependency is a document.
func (d *Dependency) Document() (ast.Node, bool) {
	if c, ok := d.Content.(*DocumentContent); ok {
		return c.Root, true
	}
	return nil, false
}

// StyleSheet returns the sheet, if this dependency is a standalone stylesheet.
func (d *Dependency) StyleSheet() (*ast.StyleSheet, bool) {
	if c, ok := d.Content.(*StyleSheetContent); ok {
		return c.Sheet, true
	}
	return nil, false
}

// ImportsURI reports whether d directly imports uri.
func (d *Dependency) ImportsURI(uri string) bool {
	return slices.Contains(d.Imports, uri)
}

// FlatEntry pairs a reachable dependency with the importer that reached it
// first. Dependent is nil for the starting uri.
type FlatEntry struct {
	Dependency *Dependency
	Dependent  *Dependency
}
