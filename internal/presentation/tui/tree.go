package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/tandem/pkg/vdom"
)

// Tree prints an indented outline of a virtual tree with node ids. Colors
// follow the profile; termenv.Ascii prints plain text.
func Tree(w io.Writer, n vdom.Node, profile termenv.Profile) {
	t := treePrinter{w: w, p: profile}
	t.node(n, 0)
}

type treePrinter struct {
	w io.Writer
	p termenv.Profile
}

func (t treePrinter) line(depth int, format string, args ...any) {
	fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (t treePrinter) id(id string) termenv.Style {
	return t.p.String("#" + id).Foreground(t.p.Color("8"))
}

func (t treePrinter) node(n vdom.Node, depth int) {
	switch v := n.(type) {
	case *vdom.Element:
		var attrs strings.Builder
		for _, a := range v.Attributes {
			attrs.WriteString(" ")
			attrs.WriteString(t.p.String(a.Name).Foreground(t.p.Color("3")).String())
			if a.Value != nil {
				attrs.WriteString("=")
				attrs.WriteString(strconv.Quote(*a.Value))
			}
		}
		tag := t.p.String(v.TagName).Foreground(t.p.Color("4")).Bold()
		t.line(depth, "<%s%s> %s", tag, attrs.String(), t.id(v.ID))
		for _, child := range v.Children {
			t.node(child, depth+1)
		}
	case *vdom.Fragment:
		t.line(depth, "%s", t.p.String("fragment").Faint())
		for _, child := range v.Children {
			t.node(child, depth+1)
		}
	case *vdom.Text:
		t.line(depth, "%s %s", t.p.String(strconv.Quote(v.Value)).Foreground(t.p.Color("2")), t.id(v.ID))
	case *vdom.Comment:
		t.line(depth, "%s", t.p.String("<!--"+v.Value+"-->").Faint())
	case *vdom.StyleElement:
		rules := 0
		if v.Sheet != nil {
			rules = len(v.Sheet.Rules)
		}
		t.line(depth, "<%s> %d rules %s", t.p.String("style").Foreground(t.p.Color("5")), rules, t.id(v.ID))
	}
}
