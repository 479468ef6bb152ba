// Package value holds the loose conversions applied to expression results:
// truthiness, stringification and list coercion.
package value

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/tandem/pkg/vdom"
)

// Truthy follows the usual scripting rules: nil, false, zero, NaN and the
// empty string are false. Everything else, including empty lists and maps,
// is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0 && x == x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && f == f
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// String renders a value for text output. nil renders as the empty string,
// lists are comma-joined and maps render as "[object Object]".
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case vdom.Node:
		return vdom.HTML(x)
	}
	if items, ok := List(v); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = String(item)
		}
		return strings.Join(parts, ",")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return "[object Object]"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	return "[object Object]"
}

// List reports whether v is a list and returns its items.
func List(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case nil, string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// Node reports whether v is a boxed virtual node.
func Node(v any) (vdom.Node, bool) {
	n, ok := v.(vdom.Node)
	return n, ok && n != nil
}
