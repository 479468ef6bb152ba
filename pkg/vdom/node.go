package vdom

import "github.com/aretw0/tandem/pkg/ast"

// Kind discriminates node variants in encoded form.
type Kind string

const (
	KindText         Kind = "Text"
	KindComment      Kind = "Comment"
	KindElement      Kind = "Element"
	KindFragment     Kind = "Fragment"
	KindStyleElement Kind = "StyleElement"
)

// Node is a virtual node.
type Node interface {
	Kind() Kind
	isNode()
}

// Text is a text node.
type Text struct {
	ID    string
	Value string
}

// Comment is part of the model for completeness; the evaluator never emits it.
type Comment struct {
	Value string
}

// Element is a rendered element. SourceURI and SourceLocation map it back to
// the document it came from.
type Element struct {
	ID             string
	SourceURI      string
	SourceLocation ast.Location
	TagName        string
	Attributes     []Attribute
	Children       []Node
}

// Fragment groups nodes. It has no id of its own.
type Fragment struct {
	Children []Node
}

// StyleElement carries the aggregated, scoped stylesheet of a document.
type StyleElement struct {
	ID    string
	Sheet *CSSSheet
}

// Attribute is a rendered attribute. Value is nil for valueless attributes.
type Attribute struct {
	ID    string
	Name  string
	Value *string
}

func (*Text) Kind() Kind         { return KindText }
func (*Comment) Kind() Kind      { return KindComment }
func (*Element) Kind() Kind      { return KindElement }
func (*Fragment) Kind() Kind     { return KindFragment }
func (*StyleElement) Kind() Kind { return KindStyleElement }

func (*Text) isNode()         {}
func (*Comment) isNode()      {}
func (*Element) isNode()      {}
func (*Fragment) isNode()     {}
func (*StyleElement) isNode() {}

// StringPtr is a helper for building attribute values.
func StringPtr(s string) *string {
	return &s
}

// PrependChild inserts child as the first child of root. Containers
// (Element, Fragment) are modified in place; any other root is wrapped in a
// new Fragment. The resulting root is returned.
func PrependChild(root, child Node) Node {
	switch r := root.(type) {
	case *Element:
		r.Children = append([]Node{child}, r.Children...)
		return r
	case *Fragment:
		r.Children = append([]Node{child}, r.Children...)
		return r
	}
	return &Fragment{Children: []Node{child, root}}
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the current node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	var children []Node
	switch v := n.(type) {
	case *Element:
		children = v.Children
	case *Fragment:
		children = v.Children
	}
	for _, child := range children {
		Walk(child, fn)
	}
}

// IDs collects the ids of every node and attribute under n in visit order.
func IDs(n Node) []string {
	var ids []string
	Walk(n, func(node Node) bool {
		switch v := node.(type) {
		case *Text:
			ids = append(ids, v.ID)
		case *StyleElement:
			ids = append(ids, v.ID)
		case *Element:
			for _, attr := range v.Attributes {
				ids = append(ids, attr.ID)
			}
			ids = append(ids, v.ID)
		}
		return true
	})
	return ids
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}
