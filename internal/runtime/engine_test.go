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

func TestEngine_LoadQueuesEvent(t *testing.T) {
	e := newEngine(t, map[string]string{mainURI: `<p>hello</p>`})
	node := load(t, e, mainURI)

	events := e.DrainEvents()
	require.Len(t, events, 1)
	evaluated, ok := events[0].(domain.Evaluated)
	require.True(t, ok)
	assert.Equal(t, mainURI, evaluated.URI)
	assert.Same(t, node, evaluated.Node)

	assert.Empty(t, e.DrainEvents(), "draining clears the queue")
}

func TestEngine_IncrementalPropagation(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><div><B /></div>`,
		cURI:    `<import id="B" src="./b.pc" /><B />`,
		bURI:    `<span>old</span>`,
	})
	load(t, e, mainURI)
	load(t, e, cURI)
	e.DrainEvents()

	require.NoError(t, e.UpdateVirtualFileContent(ctx, bURI, `<span>new</span>`))

	events := e.DrainEvents()
	assert.Equal(t, []string{bURI, cURI, mainURI}, eventURIs(events))
	for _, ev := range events {
		assert.Contains(t, vdom.HTML(ev.(domain.Evaluated).Node), "new")
	}
}

func TestEngine_UpdateStyleSheet(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, map[string]string{
		mainURI:  `<import src="./theme.css" /><div/>`,
		themeURI: `.t { color: red; }`,
	})
	load(t, e, mainURI)
	e.DrainEvents()

	require.NoError(t, e.UpdateVirtualFileContent(ctx, themeURI, `.t { color: green; }`))

	events := e.DrainEvents()
	require.Equal(t, []string{mainURI}, eventURIs(events), "stylesheets are not evaluated on their own")
	assert.Contains(t, vdom.HTML(events[0].(domain.Evaluated).Node), "color:green;")
}

func TestEngine_UpdateFailureKeepsLastKnownGood(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><B />`,
		bURI:    `<span>good</span>`,
	})
	load(t, e, mainURI)
	e.DrainEvents()

	err := e.UpdateVirtualFileContent(ctx, bURI, `<span>`)
	require.ErrorIs(t, err, domain.ErrParse)
	uri, _ := domain.ErrorURI(err)
	assert.Equal(t, bURI, uri)
	assert.Empty(t, e.DrainEvents())

	last, err := e.LastKnownGood(ctx, mainURI)
	require.NoError(t, err)
	assert.Contains(t, vdom.HTML(last), "good")

	// The graph still holds the previous parse.
	node, err := e.EvaluatePart(ctx, mainURI, "")
	require.NoError(t, err)
	assert.Contains(t, vdom.HTML(node), "good")
}

func TestEngine_UpdateAggregatesDependentFailures(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><B loop />`,
		cURI:    `<import id="B" src="./b.pc" /><B />`,
		bURI:    `<span>b</span>`,
	}, runtime.WithInstanceDepth(4))
	load(t, e, mainURI)
	load(t, e, cURI)
	e.DrainEvents()

	err := e.UpdateVirtualFileContent(ctx, bURI, `{#if loop}<self loop />{/}<span>b2</span>`)
	require.ErrorIs(t, err, domain.ErrSemantic)
	assert.Equal(t, []string{bURI, cURI}, eventURIs(e.DrainEvents()))

	last, err := e.LastKnownGood(ctx, mainURI)
	require.NoError(t, err)
	assert.NotContains(t, vdom.HTML(last), "b2")
}

func TestEngine_UpdateComponentUsingProps(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><B n={2} />`,
		bURI:    `{#if n > 0}<span>{n}</span>{/}`,
	})
	load(t, e, mainURI)
	e.DrainEvents()

	// b.pc cannot render without props, but main.pc still picks up the edit.
	err := e.UpdateVirtualFileContent(ctx, bURI, `{#if n > 1}<b>{n}</b>{/}`)
	require.ErrorIs(t, err, domain.ErrExpression)

	events := e.DrainEvents()
	require.Equal(t, []string{mainURI}, eventURIs(events))
	assert.Contains(t, vdom.HTML(events[0].(domain.Evaluated).Node), ">2</b>")
}

func TestEngine_UpdateUnloadedFile(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, map[string]string{mainURI: `<p>v1</p>`})

	require.NoError(t, e.UpdateVirtualFileContent(ctx, mainURI, `<p>v2</p>`))
	assert.Empty(t, e.DrainEvents())
	assert.Equal(t, 0, e.Graph().Len())

	node := load(t, e, mainURI)
	assert.Contains(t, vdom.HTML(node), "v2")
}

func TestEngine_Queries(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, map[string]string{
		mainURI:  `<import id="B" src="./b.pc" /><import id="C" src="./c.pc" /><style>.m { color: red; }</style><B /><C />`,
		bURI:     `<import src="./theme.css" /><span/>`,
		cURI:     `<i/>`,
		themeURI: `.t { color: red; }`,
	})
	load(t, e, mainURI)

	deps, err := e.Dependencies(mainURI)
	require.NoError(t, err)
	assert.Equal(t, []string{bURI, themeURI, cURI}, deps)

	assert.Equal(t, []string{bURI, mainURI}, e.Dependents(themeURI))
	assert.Empty(t, e.Dependents(mainURI))

	_, err = e.Dependencies("file:///app/unknown.pc")
	assert.ErrorIs(t, err, domain.ErrResolution)

	sheet, err := e.Styles(ctx, mainURI)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1, "own styles only")
	assert.Equal(t, ".m[data-pc-"+runtime.Scope(mainURI)+"]", sheet.Rules[0].(*vdom.CSSStyleRule).SelectorText)

	e.Unload(mainURI)
	_, ok := e.Graph().Get(mainURI)
	assert.True(t, ok, "unload does not evict yet")
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var loads []*domain.LoadEvent
	var evals []*domain.EvaluateEvent
	hooks := domain.LifecycleHooks{
		OnLoad: func(ctx context.Context, ev *domain.LoadEvent) {
			loads = append(loads, ev)
		},
		OnEvaluate: func(ctx context.Context, ev *domain.EvaluateEvent) {
			evals = append(evals, ev)
		},
	}
	e := newEngine(t, map[string]string{
		mainURI: `<import id="B" src="./b.pc" /><B />`,
		bURI:    `<span>b</span>`,
	}, runtime.WithLifecycleHooks(hooks))

	load(t, e, mainURI)
	require.NoError(t, e.UpdateVirtualFileContent(context.Background(), bURI, `<span>c</span>`))

	require.Len(t, loads, 3)
	assert.False(t, loads[0].Forced)
	assert.Equal(t, 2, loads[0].Files)
	assert.True(t, loads[1].Forced)
	assert.Equal(t, bURI, loads[1].URI)

	require.Len(t, evals, 3)
	assert.Equal(t, []string{mainURI, bURI, mainURI}, []string{evals[0].URI, evals[1].URI, evals[2].URI})
	assert.Equal(t, domain.EventEvaluate, evals[0].Type)
	assert.Positive(t, evals[0].Nodes)
	assert.NoError(t, evals[0].Err)
}
