package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/tandem/internal/compiler"
	"github.com/aretw0/tandem/internal/runtime"
	"github.com/aretw0/tandem/pkg/adapters/css"
	"github.com/aretw0/tandem/pkg/adapters/exprlang"
	"github.com/aretw0/tandem/pkg/adapters/vfs"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
)

func newEngine(t *testing.T, files map[string]string, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	fs, err := vfs.NewMemory(files)
	require.NoError(t, err)
	return runtime.NewEngine(fs, compiler.NewParser(), exprlang.New(), css.NewEvaluator(), opts...)
}

func load(t *testing.T, e *runtime.Engine, uri string) vdom.Node {
	t.Helper()
	node, err := e.Load(context.Background(), uri)
	require.NoError(t, err)
	return node
}

// body drops the aggregated style element prepended to every evaluation.
func body(t *testing.T, node vdom.Node) []vdom.Node {
	t.Helper()
	var children []vdom.Node
	switch n := node.(type) {
	case *vdom.Fragment:
		children = n.Children
	case *vdom.Element:
		children = n.Children
	default:
		t.Fatalf("unexpected root %T", node)
	}
	require.NotEmpty(t, children)
	_, ok := children[0].(*vdom.StyleElement)
	require.True(t, ok, "first child must be the style element, got %T", children[0])
	return children[1:]
}

func sheetOf(t *testing.T, node vdom.Node) *vdom.CSSSheet {
	t.Helper()
	var sheet *vdom.CSSSheet
	vdom.Walk(node, func(n vdom.Node) bool {
		if s, ok := n.(*vdom.StyleElement); ok && sheet == nil {
			sheet = s.Sheet
			return false
		}
		return true
	})
	require.NotNil(t, sheet)
	return sheet
}

func elements(node vdom.Node, tag string) []*vdom.Element {
	var out []*vdom.Element
	vdom.Walk(node, func(n vdom.Node) bool {
		if el, ok := n.(*vdom.Element); ok && el.TagName == tag {
			out = append(out, el)
		}
		return true
	})
	return out
}

func texts(node vdom.Node) string {
	var s string
	vdom.Walk(node, func(n vdom.Node) bool {
		if txt, ok := n.(*vdom.Text); ok {
			s += txt.Value
		}
		return true
	})
	return s
}

func attr(el *vdom.Element, name string) (string, bool) {
	for _, a := range el.Attributes {
		if a.Name == name {
			if a.Value == nil {
				return "", true
			}
			return *a.Value, true
		}
	}
	return "", false
}

func eventURIs(events []domain.EngineEvent) []string {
	uris := make([]string, len(events))
	for i, ev := range events {
		uris[i] = ev.EventURI()
	}
	return uris
}
