package tui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
)

func TestTree(t *testing.T) {
	node := &vdom.Element{
		ID:      "a-2",
		TagName: "div",
		Attributes: []vdom.Attribute{
			{ID: "a-1", Name: "class", Value: vdom.StringPtr("x")},
		},
		Children: []vdom.Node{
			&vdom.StyleElement{ID: "a-3", Sheet: &vdom.CSSSheet{}},
			&vdom.Text{ID: "a-4", Value: "hi"},
		},
	}

	var buf bytes.Buffer
	Tree(&buf, node, termenv.Ascii)

	assert.Equal(t, "<div class=\"x\"> #a-2\n  <style> 0 rules #a-3\n  \"hi\" #a-4\n", buf.String())
}

func TestCheckReport(t *testing.T) {
	results := []CheckResult{
		{Name: "main.pc", Nodes: 4},
		{Name: "bad.pc", Err: domain.NewError(domain.ErrParse, "file:///bad.pc", "unexpected | end").At(ast.Location{Start: 7, End: 8})},
		{Name: "other.pc", Err: errors.New("boom")},
	}

	report := CheckReport(results)
	assert.Contains(t, report, "3 documents, 2 failed.")
	assert.Contains(t, report, "| `main.pc` | ok | 4 nodes |")
	assert.Contains(t, report, "| `bad.pc` | parse error | unexpected \\| end (at 7) |")
	assert.Contains(t, report, "| `other.pc` | error | boom |")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
