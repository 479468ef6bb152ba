package css

import (
	"fmt"
	"strings"

	"github.com/aretw0/tandem/pkg/ast"
	"github.com/aretw0/tandem/pkg/ports"
	"github.com/aretw0/tandem/pkg/vdom"
)

// ScopeAttribute is the attribute every element of a document carries so its
// styles can be restricted to it.
func ScopeAttribute(scope string) string {
	return "data-pc-" + scope
}

// Evaluator implements ports.StyleEvaluator.
type Evaluator struct{}

// NewEvaluator creates a style evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// EvaluateStyleSheet scopes every selector of sheet to scope and resolves
// relative url() references against uri.
func (e *Evaluator) EvaluateStyleSheet(sheet *ast.StyleSheet, uri, scope string, vfs ports.VirtualFileSystem) (*vdom.CSSSheet, error) {
	out := &vdom.CSSSheet{}
	if sheet == nil {
		return out, nil
	}
	s := scoper{uri: uri, attr: "[" + ScopeAttribute(scope) + "]", vfs: vfs}
	rules, err := s.rules(sheet.Rules, false)
	if err != nil {
		return nil, err
	}
	out.Rules = rules
	return out, nil
}

type scoper struct {
	uri  string
	attr string
	vfs  ports.VirtualFileSystem
}

// rules evaluates a rule list. Inside @keyframes the preludes are offsets,
// not selectors, and are left alone.
func (s scoper) rules(in []*ast.StyleRule, keyframes bool) ([]vdom.CSSRule, error) {
	var out []vdom.CSSRule
	for _, r := range in {
		style, err := s.declarations(r.Declarations)
		if err != nil {
			return nil, err
		}
		if r.Kind == ast.AtRule {
			nested, err := s.rules(r.Rules, strings.HasSuffix(r.Name, "keyframes"))
			if err != nil {
				return nil, err
			}
			out = append(out, &vdom.CSSAtRule{
				Name:   r.Name,
				Params: r.Prelude,
				Rules:  nested,
				Style:  style,
			})
			continue
		}
		selector := r.Prelude
		if !keyframes {
			selector = s.selectorList(r.Selectors, r.Prelude)
		}
		out = append(out, &vdom.CSSStyleRule{SelectorText: selector, Style: style})
	}
	return out, nil
}

func (s scoper) selectorList(selectors []string, prelude string) string {
	if len(selectors) == 0 {
		selectors = strings.Split(prelude, ",")
	}
	scoped := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		scoped = append(scoped, s.selector(sel))
	}
	return strings.Join(scoped, ", ")
}

// selector appends the scope attribute to each compound selector, before any
// pseudo-class or pseudo-element. `:global(x)` compounds are emitted as x,
// unscoped.
func (s scoper) selector(sel string) string {
	var sb strings.Builder
	compound := strings.Builder{}
	depthParen, depthBracket := 0, 0
	var quote byte

	flush := func() {
		if compound.Len() > 0 {
			sb.WriteString(s.compound(compound.String()))
			compound.Reset()
		}
	}

	for i := 0; i < len(sel); i++ {
		c := sel[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			compound.WriteByte(c)
			continue
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depthParen++
		case c == ')':
			depthParen--
		case c == '[':
			depthBracket++
		case c == ']':
			depthBracket--
		}
		if depthParen == 0 && depthBracket == 0 && (c == ' ' || c == '>' || c == '+' || c == '~') {
			flush()
			sb.WriteByte(c)
			continue
		}
		compound.WriteByte(c)
	}
	flush()
	return sb.String()
}

func (s scoper) compound(c string) string {
	if strings.HasPrefix(c, ":global(") && strings.HasSuffix(c, ")") {
		return c[len(":global(") : len(c)-1]
	}
	// Split before the first pseudo that is not inside brackets or parens.
	depth := 0
	for i := 0; i < len(c); i++ {
		switch c[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ':':
			if depth == 0 {
				return c[:i] + s.attr + c[i:]
			}
		}
	}
	return c + s.attr
}

func (s scoper) declarations(in []ast.Declaration) ([]vdom.CSSStyleProperty, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]vdom.CSSStyleProperty, 0, len(in))
	for _, d := range in {
		value, err := s.urls(d.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, vdom.CSSStyleProperty{Name: d.Property, Value: value, Important: d.Important})
	}
	return out, nil
}

// urls rewrites relative url() references into uris.
func (s scoper) urls(value string) (string, error) {
	if s.vfs == nil || !strings.Contains(value, "url(") {
		return value, nil
	}
	var sb strings.Builder
	rest := value
	for {
		i := strings.Index(rest, "url(")
		if i < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[i:], ')')
		if end < 0 {
			sb.WriteString(rest)
			break
		}
		end += i
		sb.WriteString(rest[:i])
		ref := strings.Trim(strings.TrimSpace(rest[i+len("url("):end]), `"'`)
		if isRelative(ref) {
			resolved, err := s.vfs.Resolve(s.uri, ref)
			if err != nil {
				return "", fmt.Errorf("failed to resolve url(%s): %w", ref, err)
			}
			ref = resolved
		}
		sb.WriteString(`url("`)
		sb.WriteString(ref)
		sb.WriteString(`")`)
		rest = rest[end+1:]
	}
	return sb.String(), nil
}

func isRelative(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return false
	}
	if strings.HasPrefix(ref, "data:") || strings.Contains(ref, "://") {
		return false
	}
	return true
}
