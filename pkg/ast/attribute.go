package ast

// Attribute is an element attribute.
type Attribute interface {
	isAttribute()
}

// ShorthandAttribute is `{name}`, sugar for `name={name}`.
type ShorthandAttribute struct {
	Reference Expression
	Location  Location
}

// KeyValueAttribute is `name`, `name="value"` or `name={expr}`. Value is nil
// for valueless attributes.
type KeyValueAttribute struct {
	Name     string
	Value    AttributeValue
	Location Location
}

func (*ShorthandAttribute) isAttribute() {}
func (*KeyValueAttribute) isAttribute()  {}

// AttributeValue is either a literal string or a slot.
type AttributeValue interface {
	isAttributeValue()
}

// StringValue is a quoted literal.
type StringValue struct {
	Value string
}

// SlotValue is an embedded expression in attribute-value position.
type SlotValue struct {
	Script Expression
}

func (*StringValue) isAttributeValue() {}
func (*SlotValue) isAttributeValue()   {}
