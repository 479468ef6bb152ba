package graph

import (
	"context"
	"testing"

	"github.com/aretw0/tandem/internal/compiler"
	"github.com/aretw0/tandem/pkg/adapters/vfs"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uriA     = "file:///app/a.pc"
	uriB     = "file:///app/b.pc"
	uriC     = "file:///app/c.pc"
	uriTheme = "file:///app/theme.css"
)

func setup(t *testing.T, files map[string]string) (*Graph, *vfs.FileSystem) {
	t.Helper()
	fs, err := vfs.NewMemory(files)
	require.NoError(t, err)
	return New(compiler.NewParser()), fs
}

func chain() map[string]string {
	return map[string]string{
		uriA:     `<import id="B" src="./b.pc" /><import src="./theme.css" /><B/>`,
		uriB:     `<import id="C" src="./c.pc" /><part id="Main"><C/></part>`,
		uriC:     `<span>c</span>`,
		uriTheme: `.x { color: red; }`,
	}
}

func uris(entries []FlatEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Dependency.URI
	}
	return out
}

func TestLoadDependency(t *testing.T) {
	g, fs := setup(t, chain())
	dep, err := g.LoadDependency(context.Background(), uriA, fs)
	require.NoError(t, err)

	assert.Equal(t, []string{uriB, uriTheme}, dep.Imports)
	assert.Equal(t, map[string]string{"B": uriB, "./theme.css": uriTheme}, dep.Dependencies)
	assert.Equal(t, []string{uriA, uriB, uriC, uriTheme}, g.URIs())
	assert.Equal(t, 4, g.Len())

	theme, ok := g.Get(uriTheme)
	require.True(t, ok)
	_, isSheet := theme.StyleSheet()
	assert.True(t, isSheet)

	_, isDoc := dep.Document()
	assert.True(t, isDoc)
}

func TestLoadDependency_Cached(t *testing.T) {
	ctx := context.Background()
	g, fs := setup(t, chain())
	first, err := g.LoadDependency(ctx, uriA, fs)
	require.NoError(t, err)

	require.NoError(t, fs.Update(ctx, uriA, `<div/>`))
	second, err := g.LoadDependency(ctx, uriA, fs)
	require.NoError(t, err)
	assert.Same(t, first, second)

	reloaded, err := g.Reload(ctx, uriA, fs)
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.Empty(t, reloaded.Imports)
}

func TestLoadDependency_Failures(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		kind  error
	}{
		{"missing file", map[string]string{}, domain.ErrIO},
		{"missing import", map[string]string{uriA: `<import id="B" src="./b.pc"/>`}, domain.ErrIO},
		{"malformed", map[string]string{uriA: `<div>`}, domain.ErrParse},
		{"malformed import", map[string]string{uriA: `<import id="B" src="./b.pc"/>`, uriB: `<p>{</p>`}, domain.ErrParse},
		{"unresolvable import", map[string]string{uriA: `<import id="X" src="https://cdn/x.pc"/>`}, domain.ErrResolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, fs := setup(t, tt.files)
			_, err := g.LoadDependency(context.Background(), uriA, fs)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, 0, g.Len(), "a failed load must not insert anything")
		})
	}
}

func TestReload_FailureKeepsPreviousEntry(t *testing.T) {
	ctx := context.Background()
	g, fs := setup(t, chain())
	before, err := g.LoadDependency(ctx, uriC, fs)
	require.NoError(t, err)

	require.NoError(t, fs.Update(ctx, uriC, `<span>`))
	_, err = g.Reload(ctx, uriC, fs)
	assert.ErrorIs(t, err, domain.ErrParse)

	after, ok := g.Get(uriC)
	require.True(t, ok)
	assert.Same(t, before, after)
}

func TestFlatten(t *testing.T) {
	g, fs := setup(t, chain())
	_, err := g.LoadDependency(context.Background(), uriA, fs)
	require.NoError(t, err)

	entries, err := g.Flatten(uriA)
	require.NoError(t, err)
	assert.Equal(t, []string{uriA, uriB, uriC, uriTheme}, uris(entries))

	assert.Nil(t, entries[0].Dependent)
	assert.Equal(t, uriA, entries[1].Dependent.URI)
	assert.Equal(t, uriB, entries[2].Dependent.URI)
	assert.Equal(t, uriA, entries[3].Dependent.URI)

	_, err = g.Flatten("file:///app/unknown.pc")
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestFlatten_Deterministic(t *testing.T) {
	files := map[string]string{
		uriA: `<import id="B" src="./b.pc"/><import id="C" src="./c.pc"/>`,
		uriB: `<import id="C" src="./c.pc"/>`,
		uriC: `<div/>`,
	}
	for i := 0; i < 10; i++ {
		g, fs := setup(t, files)
		_, err := g.LoadDependency(context.Background(), uriA, fs)
		require.NoError(t, err)
		entries, err := g.Flatten(uriA)
		require.NoError(t, err)
		require.Equal(t, []string{uriA, uriB, uriC}, uris(entries))
		assert.Equal(t, uriB, entries[2].Dependent.URI, "first importer wins")
	}
}

func TestCycles(t *testing.T) {
	files := map[string]string{
		uriA: `<import id="B" src="./b.pc"/><B/>`,
		uriB: `<import id="A" src="./a.pc"/><div/>`,
	}
	g, fs := setup(t, files)
	_, err := g.LoadDependency(context.Background(), uriA, fs)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	entries, err := g.Flatten(uriA)
	require.NoError(t, err)
	assert.Equal(t, []string{uriA, uriB}, uris(entries))

	dependents := g.FlattenDependents(uriA)
	require.Len(t, dependents, 1)
	assert.Equal(t, uriB, dependents[0].URI)
}

func TestFlattenDependents(t *testing.T) {
	files := chain()
	files["file:///app/z.pc"] = `<import id="C" src="./c.pc"/>`
	files["file:///app/other.pc"] = `<div/>`
	g, fs := setup(t, files)
	ctx := context.Background()
	for _, uri := range []string{uriA, "file:///app/z.pc", "file:///app/other.pc"} {
		_, err := g.LoadDependency(ctx, uri, fs)
		require.NoError(t, err)
	}

	var got []string
	for _, dep := range g.FlattenDependents(uriC) {
		got = append(got, dep.URI)
	}
	assert.Equal(t, []string{uriB, "file:///app/z.pc", uriA}, got)
	assert.Empty(t, g.FlattenDependents(uriA))
}
