package ast

// Location is a half-open byte range into the source text.
type Location struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Node is a node of the document tree.
type Node interface {
	Loc() Location
	isNode()
}

// Text is literal text between tags.
type Text struct {
	Value    string
	Location Location
}

// Comment is an HTML comment. It never produces output.
type Comment struct {
	Value    string
	Location Location
}

// Element is a tag with attributes and children.
type Element struct {
	TagName         string
	Attributes      []Attribute
	Children        []Node
	Location        Location
	OpenTagLocation Location
}

// Fragment groups nodes without a wrapping element. Parsed documents are
// always rooted at a Fragment.
type Fragment struct {
	Children []Node
	Location Location
}

// StyleElement is a <style> tag with its parsed sheet.
type StyleElement struct {
	Attributes []Attribute
	Sheet      *StyleSheet
	Location   Location
}

// Slot is an embedded expression in child position, e.g. {name}.
type Slot struct {
	Script   Expression
	Location Location
}

func (n *Text) Loc() Location         { return n.Location }
func (n *Comment) Loc() Location      { return n.Location }
func (n *Element) Loc() Location      { return n.Location }
func (n *Fragment) Loc() Location     { return n.Location }
func (n *StyleElement) Loc() Location { return n.Location }
func (n *Slot) Loc() Location         { return n.Location }

func (*Text) isNode()         {}
func (*Comment) isNode()      {}
func (*Element) isNode()      {}
func (*Fragment) isNode()     {}
func (*StyleElement) isNode() {}
func (*Slot) isNode()         {}

// Expression is the source of an embedded expression. Path is set only when
// the expression is a plain reference such as `item` or `props.title`.
type Expression struct {
	Source   string
	Path     []string
	Location Location
}

// IsReference reports whether the expression is a plain reference path.
func (e Expression) IsReference() bool {
	return len(e.Path) > 0
}
