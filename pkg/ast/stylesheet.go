package ast

// RuleKind distinguishes qualified rules from at-rules.
type RuleKind int

const (
	QualifiedRule RuleKind = iota
	AtRule
)

// StyleSheet is a parsed stylesheet.
type StyleSheet struct {
	Rules []*StyleRule
}

// StyleRule is either a qualified rule (`a, b { ... }`) or an at-rule
// (`@media screen { ... }`). Name is the at-rule name without the leading @.
type StyleRule struct {
	Kind         RuleKind
	Name         string
	Prelude      string
	Selectors    []string
	Declarations []Declaration
	Rules        []*StyleRule
}

// Declaration is a single `property: value` pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}
