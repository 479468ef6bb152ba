package ast

// Block is a control-flow node: a conditional chain or an each loop.
type Block interface {
	Node
	isBlock()
}

// ConditionalBlock is one link of an if / else-if / else chain.
type ConditionalBlock interface {
	Block
	isConditional()
}

// PassFailBlock is `{#if cond}` or `{/else if cond}`. Fail is the next link
// of the chain, or nil.
type PassFailBlock struct {
	Condition Expression
	Body      Node
	Fail      ConditionalBlock
	Location  Location
}

// FinalBlock is the trailing `{/else}` of a chain.
type FinalBlock struct {
	Body     Node
	Location Location
}

// EachBlock is `{#each source as value, key}`. KeyName is empty when no key
// is declared.
type EachBlock struct {
	Source    Expression
	ValueName string
	KeyName   string
	Body      Node
	Location  Location
}

func (b *PassFailBlock) Loc() Location { return b.Location }
func (b *FinalBlock) Loc() Location    { return b.Location }
func (b *EachBlock) Loc() Location     { return b.Location }

func (*PassFailBlock) isNode() {}
func (*FinalBlock) isNode()    {}
func (*EachBlock) isNode()     {}

func (*PassFailBlock) isBlock() {}
func (*FinalBlock) isBlock()    {}
func (*EachBlock) isBlock()     {}

func (*PassFailBlock) isConditional() {}
func (*FinalBlock) isConditional()    {}
