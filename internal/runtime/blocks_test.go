package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tandem/pkg/adapters/exprlang"
	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/vdom"
)

func TestEvaluatePassFail_EmptyTruthyLinkFallsThrough(t *testing.T) {
	e := NewEvaluator(nil, nil, exprlang.New(), nil)
	ctx := Context{uri: "file:///app/main.pc", data: map[string]any{"ok": true}, ids: &idCounter{seed: "s"}}

	block := &ast.PassFailBlock{
		Condition: ast.Expression{Source: "ok", Path: []string{"ok"}},
		Fail:      &ast.FinalBlock{Body: &ast.Text{Value: "else"}},
	}
	node, err := e.evaluatePassFail(block, ctx)
	require.NoError(t, err)
	text, ok := node.(*vdom.Text)
	require.True(t, ok, "got %T", node)
	assert.Equal(t, "else", text.Value)

	block.Body = &ast.Text{Value: "then"}
	node, err = e.evaluatePassFail(block, ctx)
	require.NoError(t, err)
	assert.Equal(t, "then", node.(*vdom.Text).Value)
}
