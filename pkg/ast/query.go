package ast

// Tag names with a structural role.
const (
	TagImport   = "import"
	TagPart     = "part"
	TagSelf     = "self"
	TagPreview  = "preview"
	TagScript   = "script"
	TagProperty = "property"
	TagLogic    = "logic"
	TagStyle    = "style"
)

// Children returns the direct children of an Element or Fragment, or nil.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Element:
		return v.Children
	case *Fragment:
		return v.Children
	}
	return nil
}

// Attr finds a key-value attribute by name.
func Attr(el *Element, name string) (*KeyValueAttribute, bool) {
	for _, attr := range el.Attributes {
		if kv, ok := attr.(*KeyValueAttribute); ok && kv.Name == name {
			return kv, true
		}
	}
	return nil, false
}

// AttrValue returns the literal string value of an attribute. Slot values and
// valueless attributes are not literal and report false.
func AttrValue(el *Element, name string) (string, bool) {
	kv, ok := Attr(el, name)
	if !ok {
		return "", false
	}
	if s, ok := kv.Value.(*StringValue); ok {
		return s.Value, true
	}
	return "", false
}

// Imports returns the root-level <import> elements that declare a literal src,
// in source order.
func Imports(root Node) []*Element {
	var imports []*Element
	for _, child := range Children(root) {
		el, ok := child.(*Element)
		if !ok || el.TagName != TagImport {
			continue
		}
		if _, ok := AttrValue(el, "src"); ok {
			imports = append(imports, el)
		}
	}
	return imports
}

// ImportName is the local name an import is known by: its id, or its src when
// no id is declared (stylesheet imports usually have none).
func ImportName(el *Element) string {
	if id, ok := AttrValue(el, "id"); ok {
		return id
	}
	src, _ := AttrValue(el, "src")
	return src
}

// ImportIDs returns the ids of every import that declares one.
func ImportIDs(root Node) []string {
	var ids []string
	for _, imp := range Imports(root) {
		if id, ok := AttrValue(imp, "id"); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Parts returns the root-level <part> elements.
func Parts(root Node) []*Element {
	var parts []*Element
	for _, child := range Children(root) {
		if el, ok := child.(*Element); ok && el.TagName == TagPart {
			parts = append(parts, el)
		}
	}
	return parts
}

// PartIDs returns the ids of the root-level parts.
func PartIDs(root Node) []string {
	var ids []string
	for _, part := range Parts(root) {
		if id, ok := AttrValue(part, "id"); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// PartByID finds a root-level part by id.
func PartByID(root Node, id string) (*Element, bool) {
	for _, part := range Parts(root) {
		if v, ok := AttrValue(part, "id"); ok && v == id {
			return part, true
		}
	}
	return nil, false
}

// StyleElements returns the root-level <style> elements. Styles are only
// honoured at the root, so nested ones are not searched.
func StyleElements(root Node) []*StyleElement {
	var styles []*StyleElement
	for _, child := range Children(root) {
		if st, ok := child.(*StyleElement); ok {
			styles = append(styles, st)
		}
	}
	return styles
}
