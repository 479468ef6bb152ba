package vdom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// HTML serializes a virtual tree. Ids are not emitted; the output is what a
// browser would see. Valueless attributes are written as name="".
func HTML(n Node) string {
	var sb strings.Builder
	if err := Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// Render writes the HTML of n to w.
func Render(w io.Writer, n Node) error {
	doc := &html.Node{Type: html.DocumentNode}
	appendHTML(doc, n)
	return html.Render(w, doc)
}

// appendHTML converts n into html nodes under parent. Fragments are
// flattened; void elements drop their children.
func appendHTML(parent *html.Node, n Node) {
	switch v := n.(type) {
	case nil:
	case *Text:
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: v.Value})
	case *Comment:
		parent.AppendChild(&html.Node{Type: html.CommentNode, Data: v.Value})
	case *StyleElement:
		style := &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style"}
		if v.Sheet != nil {
			style.AppendChild(&html.Node{Type: html.TextNode, Data: v.Sheet.String()})
		}
		parent.AppendChild(style)
	case *Fragment:
		for _, child := range v.Children {
			appendHTML(parent, child)
		}
	case *Element:
		el := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Lookup([]byte(v.TagName)),
			Data:     v.TagName,
			Attr:     make([]html.Attribute, 0, len(v.Attributes)),
		}
		for _, attr := range v.Attributes {
			a := html.Attribute{Key: attr.Name}
			if attr.Value != nil {
				a.Val = *attr.Value
			}
			el.Attr = append(el.Attr, a)
		}
		if !voidElements[v.TagName] {
			for _, child := range v.Children {
				appendHTML(el, child)
			}
		}
		parent.AppendChild(el)
	}
}
