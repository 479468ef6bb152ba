package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tandem/internal/compiler"
	"github.com/aretw0/tandem/internal/runtime"
	"github.com/aretw0/tandem/pkg/adapters/css"
	"github.com/aretw0/tandem/pkg/adapters/exprlang"
	"github.com/aretw0/tandem/pkg/adapters/vfs"
	"github.com/aretw0/tandem/pkg/domain"
)

const (
	pageURI   = "file:///docs/page.pc"
	headerURI = "file:///docs/header.pc"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	fs, err := vfs.NewMemory(map[string]string{
		pageURI:   `<import id="Header" src="./header.pc" /><part id="Body"><p>body</p></part><Header /><Body />`,
		headerURI: `<h1>title</h1>`,
	})
	require.NoError(t, err)
	engine := runtime.NewEngine(fs, compiler.NewParser(), exprlang.New(), css.NewEvaluator())
	return NewServer(engine, "test")
}

func TestRender(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleRender(ctx, mcp.CallToolRequest{}, RenderArgs{URI: pageURI})
	require.NoError(t, err)
	assert.Contains(t, res.HTML, "<h1")
	assert.Contains(t, res.HTML, "body")

	res, err = s.handleRender(ctx, mcp.CallToolRequest{}, RenderArgs{URI: pageURI, Part: "Body"})
	require.NoError(t, err)
	assert.NotContains(t, res.HTML, "<h1")

	_, err = s.handleRender(ctx, mcp.CallToolRequest{}, RenderArgs{URI: pageURI, Part: "Missing"})
	assert.ErrorIs(t, err, domain.ErrResolution)

	_, err = s.handleRender(ctx, mcp.CallToolRequest{}, RenderArgs{})
	assert.Error(t, err)
}

func TestUpdateAndDependents(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, err := s.handleRender(ctx, mcp.CallToolRequest{}, RenderArgs{URI: pageURI})
	require.NoError(t, err)

	graph, err := s.handleDependents(ctx, mcp.CallToolRequest{}, GraphArgs{URI: headerURI})
	require.NoError(t, err)
	assert.Equal(t, []string{pageURI}, graph.Dependents)
	assert.Empty(t, graph.Dependencies)

	res, err := s.handleUpdate(ctx, mcp.CallToolRequest{}, UpdateArgs{URI: headerURI, Content: `<h2>new</h2>`})
	require.NoError(t, err)
	assert.Equal(t, []string{headerURI, pageURI}, res.Evaluated)

	_, err = s.handleUpdate(ctx, mcp.CallToolRequest{}, UpdateArgs{URI: headerURI, Content: `<h2>`})
	assert.ErrorIs(t, err, domain.ErrParse)
}
