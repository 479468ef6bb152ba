package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tandem/internal/runtime"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
)

const (
	mainURI  = "file:///app/main.pc"
	bURI     = "file:///app/b.pc"
	cURI     = "file:///app/c.pc"
	themeURI = "file:///app/theme.css"
)

func TestEvaluate_IDs(t *testing.T) {
	e := newEngine(t, map[string]string{mainURI: `<div class="a">hi</div>`})
	node := load(t, e, mainURI)

	seed := runtime.Seed(mainURI, 0)
	div, ok := node.(*vdom.Element)
	require.True(t, ok, "a single child collapses to the element, got %T", node)

	assert.Equal(t, seed+"-4", div.ID)
	assert.Equal(t, mainURI, div.SourceURI)
	require.Len(t, div.Attributes, 2)
	assert.Equal(t, vdom.Attribute{ID: seed + "-1", Name: "class", Value: vdom.StringPtr("a")}, div.Attributes[0])
	assert.Equal(t, vdom.Attribute{ID: seed + "-2", Name: "data-pc-" + runtime.Scope(mainURI)}, div.Attributes[1])

	assert.Equal(t, []string{seed + "-1", seed + "-2", seed + "-4", seed + "-5", seed + "-3"}, vdom.IDs(node))

	again, err := e.EvaluatePart(context.Background(), mainURI, "")
	require.NoError(t, err)
	assert.Equal(t, vdom.IDs(node), vdom.IDs(again), "ids are stable across evaluations")
}

func TestEvaluate_SiblingInstancesGetDisjointIDs(t *testing.T) {
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><div><B /><B /><Row /><Row /></div><part id="Row"><i>r</i></part>`,
		bURI:    `<p>x</p>`,
	})
	node := load(t, e, mainURI)

	ps := elements(node, "p")
	require.Len(t, ps, 2)
	assert.NotEqual(t, ps[0].ID, ps[1].ID)

	rows := elements(node, "i")
	require.Len(t, rows, 2)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)

	ids := vdom.IDs(node)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSeedAndScope(t *testing.T) {
	assert.Equal(t, runtime.Seed(mainURI, 3), runtime.Seed(mainURI, 3))
	assert.NotEqual(t, runtime.Seed(mainURI, 0), runtime.Seed(mainURI, 1))
	assert.NotEqual(t, runtime.Scope(mainURI), runtime.Scope(bURI))
	assert.Regexp(t, `^[0-9a-f]+$`, runtime.Scope(mainURI))
}

func TestEvaluate_FragmentCollapsing(t *testing.T) {
	cases := []struct {
		name   string
		source string
		check  func(t *testing.T, node vdom.Node)
	}{
		{"empty document", "", func(t *testing.T, node vdom.Node) {
			frag, ok := node.(*vdom.Fragment)
			require.True(t, ok)
			require.Len(t, frag.Children, 1)
			assert.IsType(t, &vdom.StyleElement{}, frag.Children[0])
		}},
		{"single child", `<!-- note --><a/>`, func(t *testing.T, node vdom.Node) {
			el, ok := node.(*vdom.Element)
			require.True(t, ok)
			assert.Equal(t, "a", el.TagName)
		}},
		{"siblings", `<a/><b/>`, func(t *testing.T, node vdom.Node) {
			_, ok := node.(*vdom.Fragment)
			require.True(t, ok)
			children := body(t, node)
			require.Len(t, children, 2)
			assert.Equal(t, "a", children[0].(*vdom.Element).TagName)
			assert.Equal(t, "b", children[1].(*vdom.Element).TagName)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, map[string]string{mainURI: tc.source})
			tc.check(t, load(t, e, mainURI))
		})
	}
}

func TestEvaluate_ConditionalChain(t *testing.T) {
	source := `{#if x == 1}<a/>{/else if x == 2}<b/>{/else}<c/>{/}`
	for x, want := range map[int]string{1: "a", 2: "b", 3: "c"} {
		e := newEngine(t, map[string]string{mainURI: source}, runtime.WithData(map[string]any{"x": x}))
		node := load(t, e, mainURI)
		el, ok := node.(*vdom.Element)
		require.True(t, ok)
		assert.Equal(t, want, el.TagName, "x=%d", x)
	}

	t.Run("no branch taken", func(t *testing.T) {
		e := newEngine(t, map[string]string{mainURI: `{#if false}<a/>{/}`})
		node := load(t, e, mainURI)
		assert.Empty(t, body(t, node))
	})
}

func TestEvaluate_Each(t *testing.T) {
	source := `<ul>{#each items as item, i}<li>{i}:{item}</li>{/}</ul>`

	t.Run("list", func(t *testing.T) {
		e := newEngine(t, map[string]string{mainURI: source},
			runtime.WithData(map[string]any{"items": []any{"a", "b"}}))
		node := load(t, e, mainURI)

		children := body(t, node)
		require.Len(t, children, 1)
		loop, ok := children[0].(*vdom.Fragment)
		require.True(t, ok, "each always yields a fragment")
		require.Len(t, loop.Children, 2)

		items := elements(node, "li")
		require.Len(t, items, 2)
		assert.Equal(t, "0:a", texts(items[0]))
		assert.Equal(t, "1:b", texts(items[1]))

		// Each iteration advances the parent counter and reseeds.
		assert.Equal(t, runtime.Seed(mainURI, 2)+"-5", items[0].ID)
		assert.Equal(t, runtime.Seed(mainURI, 3)+"-5", items[1].ID)
	})

	t.Run("single item stays a fragment", func(t *testing.T) {
		e := newEngine(t, map[string]string{mainURI: source},
			runtime.WithData(map[string]any{"items": []string{"only"}}))
		children := body(t, load(t, e, mainURI))
		loop, ok := children[0].(*vdom.Fragment)
		require.True(t, ok)
		assert.Len(t, loop.Children, 1)
	})

	t.Run("non-list source", func(t *testing.T) {
		e := newEngine(t, map[string]string{mainURI: source},
			runtime.WithData(map[string]any{"items": "nope"}))
		children := body(t, load(t, e, mainURI))
		loop, ok := children[0].(*vdom.Fragment)
		require.True(t, ok)
		assert.Empty(t, loop.Children)
	})
}

func TestEvaluate_Attributes(t *testing.T) {
	source := `<div {title} {missing} hidden>` +
		`<img src="./logo.png" /><img src="https://cdn.example.com/x.png" /><img src="/abs.png" />` +
		`</div>`
	e := newEngine(t, map[string]string{mainURI: source}, runtime.WithData(map[string]any{"title": "t"}))
	node := load(t, e, mainURI)

	div := elements(node, "div")[0]
	v, ok := attr(div, "title")
	assert.True(t, ok)
	assert.Equal(t, "t", v)
	_, ok = attr(div, "missing")
	assert.False(t, ok, "a shorthand bound to nothing is omitted")
	_, ok = attr(div, "hidden")
	assert.True(t, ok)

	var srcs []string
	for _, img := range elements(node, "img") {
		src, _ := attr(img, "src")
		srcs = append(srcs, src)
	}
	assert.Equal(t, []string{"file:///app/logo.png", "https://cdn.example.com/x.png", "/abs.png"}, srcs)
}

func TestEvaluate_ComponentInstance(t *testing.T) {
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><B cls="x" {label}><span>in</span></B>`,
		bURI:    `<div class={cls} data-label={label}>{children}</div>`,
	}, runtime.WithData(map[string]any{"label": "L"}))
	node := load(t, e, mainURI)

	div := elements(node, "div")[0]
	assert.Equal(t, bURI, div.SourceURI)
	cls, _ := attr(div, "class")
	assert.Equal(t, "x", cls)
	label, _ := attr(div, "data-label")
	assert.Equal(t, "L", label)
	_, ok := attr(div, "data-pc-"+runtime.Scope(bURI))
	assert.True(t, ok, "elements carry their own document's scope")

	spans := elements(div, "span")
	require.Len(t, spans, 1)
	assert.Equal(t, mainURI, spans[0].SourceURI)
}

func TestEvaluate_Parts(t *testing.T) {
	source := `<part id="Card"><div>{title}</div></part><Card title="hi" />`
	e := newEngine(t, map[string]string{mainURI: source})

	node := load(t, e, mainURI)
	div, ok := node.(*vdom.Element)
	require.True(t, ok, "part definitions do not render, the instance does")
	assert.Equal(t, "div", div.TagName)
	assert.Equal(t, "hi", texts(div))

	part, err := e.EvaluatePart(context.Background(), mainURI, "Card")
	require.NoError(t, err)
	assert.Equal(t, "div", part.(*vdom.Element).TagName)

	_, err = e.EvaluatePart(context.Background(), mainURI, "Nope")
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestEvaluate_Self(t *testing.T) {
	t.Run("guarded at the top level", func(t *testing.T) {
		e := newEngine(t, map[string]string{mainURI: `<div><self /></div>`})
		_, err := e.Load(context.Background(), mainURI)
		require.ErrorIs(t, err, domain.ErrSemantic)
		uri, _ := domain.ErrorURI(err)
		assert.Equal(t, mainURI, uri)
	})

	t.Run("recursion inside an instance", func(t *testing.T) {
		e := newEngine(t, map[string]string{
			mainURI: `<import id="B" src="./b.pc" /><B n={2} />`,
			bURI:    `{#if n > 0}<span>{n}</span><self n={n - 1} />{/}`,
		})
		node := load(t, e, mainURI)
		spans := elements(node, "span")
		require.Len(t, spans, 2)
		assert.Equal(t, "2", texts(spans[0]))
		assert.Equal(t, "1", texts(spans[1]))
	})

	t.Run("depth limit", func(t *testing.T) {
		e := newEngine(t, map[string]string{
			mainURI: `<import id="B" src="./b.pc" /><B />`,
			bURI:    `<span><self /></span>`,
		}, runtime.WithInstanceDepth(8))
		_, err := e.Load(context.Background(), mainURI)
		require.ErrorIs(t, err, domain.ErrSemantic)
		assert.Contains(t, err.Error(), "maximum instance depth")
	})
}

func TestEvaluate_StylePrecedence(t *testing.T) {
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><style>.a { color: blue; }</style><B />`,
		bURI:    `<style>.b { color: red; }</style><span>b</span>`,
	})
	sheet := sheetOf(t, load(t, e, mainURI))

	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, ".b[data-pc-"+runtime.Scope(bURI)+"]", sheet.Rules[0].(*vdom.CSSStyleRule).SelectorText)
	assert.Equal(t, ".a[data-pc-"+runtime.Scope(mainURI)+"]", sheet.Rules[1].(*vdom.CSSStyleRule).SelectorText)
}

func TestEvaluate_StyleSheetImport(t *testing.T) {
	e := newEngine(t, map[string]string{
		mainURI:  `<import src="./theme.css" /><div/>`,
		themeURI: `.t { color: red; }`,
	})
	sheet := sheetOf(t, load(t, e, mainURI))

	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, ".t[data-pc-"+runtime.Scope(mainURI)+"]", sheet.Rules[0].(*vdom.CSSStyleRule).SelectorText,
		"stylesheets take their importer's scope")
}

func TestEvaluate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		data  map[string]any
		kind  error
	}{
		{"missing file", map[string]string{}, nil, domain.ErrIO},
		{"missing import", map[string]string{mainURI: `<import id="B" src="./nope.pc" /><B />`}, nil, domain.ErrIO},
		{"malformed markup", map[string]string{mainURI: `<div>`}, nil, domain.ErrParse},
		{"stylesheet as component", map[string]string{
			mainURI:  `<import id="T" src="./theme.css" /><T />`,
			themeURI: `.t { color: red; }`,
		}, nil, domain.ErrResolution},
		{"dotted shorthand", map[string]string{mainURI: `<div {a.b} />`}, nil, domain.ErrSemantic},
		{"expression failure", map[string]string{mainURI: `<div>{items[5]}</div>`}, map[string]any{"items": []any{1}}, domain.ErrExpression},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.files, runtime.WithData(tc.data))
			_, err := e.Load(context.Background(), mainURI)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Empty(t, e.DrainEvents())
		})
	}
}
