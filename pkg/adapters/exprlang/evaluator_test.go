package exprlang

import (
	"testing"

	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/ports"
	"github.com/aretw0/tandem/pkg/vdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ExpressionEvaluator = (*Evaluator)(nil)

func exprOf(src string) ast.Expression {
	return ast.Expression{Source: src, Path: ReferencePath(src)}
}

func TestEvaluate(t *testing.T) {
	data := map[string]any{
		"name":  "Ada",
		"count": 3,
		"show":  true,
		"props": map[string]any{"title": "Hello"},
		"items": []any{"a", "b"},
	}

	tests := []struct {
		src  string
		want any
	}{
		{"name", "Ada"},
		{"props.title", "Hello"},
		{"missing", nil},
		{"missing.deep", nil},
		{"props.missing", nil},
		{"count + 1", 4},
		{"show && count > 2", true},
		{"!show", false},
		{`name + "!"`, "Ada!"},
		{"len(items)", 2},
		{`"x"`, "x"},
	}
	ev := New()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ev.Evaluate(exprOf(tt.src), data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_PassesNodesThrough(t *testing.T) {
	children := &vdom.Fragment{}
	got, err := New().Evaluate(exprOf("children"), map[string]any{"children": children})
	require.NoError(t, err)
	assert.Same(t, children, got)
}

func TestEvaluate_Errors(t *testing.T) {
	ev := New()
	_, err := ev.Evaluate(exprOf("1 +"), nil)
	assert.Error(t, err)
}

func TestEvaluate_CachesPrograms(t *testing.T) {
	ev := New()
	for i := 0; i < 3; i++ {
		_, err := ev.Evaluate(exprOf("count * 2"), map[string]any{"count": i})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, ev.CacheSize())
}

func TestEvaluate_BindingsShadowBuiltins(t *testing.T) {
	ev := New()
	data := map[string]any{"count": 2, "max": 5, "items": []any{1, 2, 3}}

	got, err := ev.Evaluate(exprOf("count + 1"), data)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = ev.Evaluate(exprOf("max > 1"), data)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = ev.Evaluate(exprOf("len(items) + count"), data)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	// Without a binding named max, the builtin is available again.
	got, err = ev.Evaluate(exprOf("max(1, 4)"), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestReferencePath(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"item", []string{"item"}},
		{"props.title", []string{"props", "title"}},
		{"a.b.c", []string{"a", "b", "c"}},
		{`a["b"]`, []string{"a", "b"}},
		{"a?.b", nil},
		{"a + b", nil},
		{"items[0]", nil},
		{"f()", nil},
		{"1 +", nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferencePath(tt.src))
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("a && b"))
	assert.Error(t, Check("a &&"))
}
