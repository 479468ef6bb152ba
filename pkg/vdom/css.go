package vdom

import (
	"fmt"
	"strings"
)

// CSSSheet is an evaluated, scoped stylesheet: a flat ordered list of rules.
type CSSSheet struct {
	Rules []CSSRule
}

// Extend appends the rules of other.
func (s *CSSSheet) Extend(other *CSSSheet) {
	if other == nil {
		return
	}
	s.Rules = append(s.Rules, other.Rules...)
}

func (s *CSSSheet) String() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	for _, rule := range s.Rules {
		sb.WriteString(rule.String())
	}
	return sb.String()
}

// CSSRule is an evaluated rule.
type CSSRule interface {
	fmt.Stringer
	isCSSRule()
}

// CSSStyleRule is `selector { declarations }` with the selector already scoped.
type CSSStyleRule struct {
	SelectorText string
	Style        []CSSStyleProperty
}

// CSSAtRule is `@name params { ... }`. Nested rules and plain declarations
// (as in @font-face) are both kept.
type CSSAtRule struct {
	Name   string
	Params string
	Rules  []CSSRule
	Style  []CSSStyleProperty
}

// CSSStyleProperty is one declaration.
type CSSStyleProperty struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Important bool   `json:"important,omitempty"`
}

func (*CSSStyleRule) isCSSRule() {}
func (*CSSAtRule) isCSSRule()    {}

func (p CSSStyleProperty) String() string {
	if p.Important {
		return fmt.Sprintf("%s:%s !important;", p.Name, p.Value)
	}
	return fmt.Sprintf("%s:%s;", p.Name, p.Value)
}

func (r *CSSStyleRule) String() string {
	var sb strings.Builder
	sb.WriteString(r.SelectorText)
	sb.WriteString("{")
	for _, p := range r.Style {
		sb.WriteString(p.String())
	}
	sb.WriteString("}")
	return sb.String()
}

func (r *CSSAtRule) String() string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(r.Name)
	if r.Params != "" {
		sb.WriteString(" ")
		sb.WriteString(r.Params)
	}
	if len(r.Rules) == 0 && len(r.Style) == 0 {
		sb.WriteString(";")
		return sb.String()
	}
	sb.WriteString("{")
	for _, p := range r.Style {
		sb.WriteString(p.String())
	}
	for _, nested := range r.Rules {
		sb.WriteString(nested.String())
	}
	sb.WriteString("}")
	return sb.String()
}
