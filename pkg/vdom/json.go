package vdom

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/tandem/pkg/ast"
)

// wireNode is the encoded form of every node variant, discriminated by Kind.
type wireNode struct {
	Kind           Kind              `json:"kind"`
	ID             string            `json:"id,omitempty"`
	Value          *string           `json:"value,omitempty"`
	SourceURI      string            `json:"sourceUri,omitempty"`
	SourceLocation *ast.Location     `json:"sourceLocation,omitempty"`
	TagName        string            `json:"tagName,omitempty"`
	Attributes     []Attribute       `json:"attributes,omitempty"`
	Children       []json.RawMessage `json:"children,omitempty"`
	Sheet          *CSSSheet         `json:"sheet,omitempty"`
}

type wireAttribute struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

func (a Attribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAttribute(a))
}

func (a *Attribute) UnmarshalJSON(data []byte) error {
	var w wireAttribute
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Attribute(w)
	return nil
}

func (n *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Kind: KindText, ID: n.ID, Value: &n.Value})
}

func (n *Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Kind: KindComment, Value: &n.Value})
}

func (n *StyleElement) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{Kind: KindStyleElement, ID: n.ID, Sheet: n.Sheet})
}

func (n *Fragment) MarshalJSON() ([]byte, error) {
	children, err := marshalChildren(n.Children)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireNode{Kind: KindFragment, Children: children})
}

func (n *Element) MarshalJSON() ([]byte, error) {
	children, err := marshalChildren(n.Children)
	if err != nil {
		return nil, err
	}
	loc := n.SourceLocation
	return json.Marshal(wireNode{
		Kind:           KindElement,
		ID:             n.ID,
		SourceURI:      n.SourceURI,
		SourceLocation: &loc,
		TagName:        n.TagName,
		Attributes:     n.Attributes,
		Children:       children,
	})
}

func marshalChildren(children []Node) ([]json.RawMessage, error) {
	if len(children) == 0 {
		return nil, nil
	}
	out := make([]json.RawMessage, 0, len(children))
	for _, child := range children {
		raw, err := json.Marshal(child)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// Unmarshal decodes a node encoded with json.Marshal.
func Unmarshal(data []byte) (Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return w.node()
}

func (w wireNode) node() (Node, error) {
	value := ""
	if w.Value != nil {
		value = *w.Value
	}
	switch w.Kind {
	case KindText:
		return &Text{ID: w.ID, Value: value}, nil
	case KindComment:
		return &Comment{Value: value}, nil
	case KindStyleElement:
		return &StyleElement{ID: w.ID, Sheet: w.Sheet}, nil
	case KindFragment:
		children, err := unmarshalChildren(w.Children)
		if err != nil {
			return nil, err
		}
		return &Fragment{Children: children}, nil
	case KindElement:
		children, err := unmarshalChildren(w.Children)
		if err != nil {
			return nil, err
		}
		el := &Element{
			ID:         w.ID,
			SourceURI:  w.SourceURI,
			TagName:    w.TagName,
			Attributes: w.Attributes,
			Children:   children,
		}
		if w.SourceLocation != nil {
			el.SourceLocation = *w.SourceLocation
		}
		return el, nil
	}
	return nil, fmt.Errorf("unknown node kind %q", w.Kind)
}

func unmarshalChildren(raw []json.RawMessage) ([]Node, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	children := make([]Node, 0, len(raw))
	for _, r := range raw {
		child, err := Unmarshal(r)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

type wireRule struct {
	Kind         string             `json:"kind"`
	SelectorText string             `json:"selectorText,omitempty"`
	Name         string             `json:"name,omitempty"`
	Params       string             `json:"params,omitempty"`
	Style        []CSSStyleProperty `json:"style,omitempty"`
	Rules        []json.RawMessage  `json:"rules,omitempty"`
}

const (
	ruleKindStyle = "StyleRule"
	ruleKindAt    = "AtRule"
)

func (r *CSSStyleRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRule{Kind: ruleKindStyle, SelectorText: r.SelectorText, Style: r.Style})
}

func (r *CSSAtRule) MarshalJSON() ([]byte, error) {
	rules, err := marshalRules(r.Rules)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRule{Kind: ruleKindAt, Name: r.Name, Params: r.Params, Style: r.Style, Rules: rules})
}

func (s *CSSSheet) MarshalJSON() ([]byte, error) {
	rules, err := marshalRules(s.Rules)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []json.RawMessage{}
	}
	return json.Marshal(struct {
		Rules []json.RawMessage `json:"rules"`
	}{rules})
}

func (s *CSSSheet) UnmarshalJSON(data []byte) error {
	var w struct {
		Rules []json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rules, err := unmarshalRules(w.Rules)
	if err != nil {
		return err
	}
	s.Rules = rules
	return nil
}

func marshalRules(rules []CSSRule) ([]json.RawMessage, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	out := make([]json.RawMessage, 0, len(rules))
	for _, rule := range rules {
		raw, err := json.Marshal(rule)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func unmarshalRules(raw []json.RawMessage) ([]CSSRule, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	rules := make([]CSSRule, 0, len(raw))
	for _, r := range raw {
		var w wireRule
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, err
		}
		switch w.Kind {
		case ruleKindStyle:
			rules = append(rules, &CSSStyleRule{SelectorText: w.SelectorText, Style: w.Style})
		case ruleKindAt:
			nested, err := unmarshalRules(w.Rules)
			if err != nil {
				return nil, err
			}
			rules = append(rules, &CSSAtRule{Name: w.Name, Params: w.Params, Style: w.Style, Rules: nested})
		default:
			return nil, fmt.Errorf("unknown rule kind %q", w.Kind)
		}
	}
	return rules, nil
}
