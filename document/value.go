package document

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid is the zero Kind; a zero Value behaves like null.
	KindInvalid Kind = iota
	// KindNull represents an explicit null.
	KindNull
	// KindBool represents a boolean value.
	KindBool
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a floating point value.
	KindFloat
	// KindString represents a text value.
	KindString
	// KindArray represents an ordered sequence of values.
	KindArray
	// KindObject represents a nested document.
	KindObject
	// KindOpaque wraps a driver value that has no natural textual form
	// (object ids, timestamps, driver structs). Its text is a stable
	// stringification and its raw value is kept so it round-trips.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindOpaque:
		return "opaque"
	default:
		return "invalid"
	}
}

// Value is a small typed value used for documents and filters.
//
// Filters and documents are recursive: arrays hold Values and objects hold
// Documents, so code that walks them can switch on Kind exhaustively instead
// of inspecting dynamic types.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	a    []Value
	o    Document
	raw  any
	typ  string
}

// Null returns a null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating point Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a text Value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Array returns a sequence Value.
func Array(v ...Value) Value { return Value{kind: KindArray, a: v} }

// Object returns a nested document Value.
func Object(d Document) Value { return Value{kind: KindObject, o: d} }

// Opaque wraps a value without a natural textual form. The stable text is
// the JSON encoding when the value marshals and the %v formatting otherwise.
func Opaque(raw any) Value {
	typ := "nil"
	if raw != nil {
		typ = reflect.TypeOf(raw).String()
	}
	return Value{kind: KindOpaque, raw: raw, typ: typ, s: stableText(raw)}
}

func stableText(raw any) string {
	if raw == nil {
		return "null"
	}
	if data, err := json.Marshal(raw); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", raw)
}

// Kind reports the kind of the value. A zero Value reports KindNull.
func (v Value) Kind() Kind {
	if v.kind == KindInvalid {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether the value is null or the zero Value.
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt64 returns the integer value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat64 returns the float value if Kind is KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsString returns the text value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsArray returns the elements if Kind is KindArray.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.a, true
}

// AsObject returns the nested document if Kind is KindObject.
func (v Value) AsObject() (Document, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.o, true
}

// OpaqueText returns the type name and stable text of an opaque value.
func (v Value) OpaqueText() (typ, text string, ok bool) {
	if v.kind != KindOpaque {
		return "", "", false
	}
	return v.typ, v.s, true
}

// Raw returns the original driver value of an opaque Value, or nil.
func (v Value) Raw() any {
	if v.kind != KindOpaque {
		return nil
	}
	return v.raw
}

// number returns the numeric value of int and float kinds.
func (v Value) number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal reports whether two values are equal. Ints and floats compare by
// numeric value; everything else requires the same kind.
func (v Value) Equal(o Value) bool {
	if a, ok := v.number(); ok {
		if b, ok := o.number(); ok {
			return a == b
		}
		return false
	}
	if v.Kind() != o.Kind() {
		return false
	}

	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.a) != len(o.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(o.a[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.o.Equal(o.o)
	case KindOpaque:
		return v.typ == o.typ && v.s == o.s
	default:
		return false
	}
}

// compare orders two values of comparable kinds (numbers with numbers,
// strings with strings, bools with bools). ok is false otherwise.
func (v Value) compare(o Value) (int, bool) {
	if a, ok := v.number(); ok {
		b, ok := o.number()
		if !ok || math.IsNaN(a) || math.IsNaN(b) {
			return 0, false
		}
		return cmp.Compare(a, b), true
	}

	switch {
	case v.kind == KindString && o.kind == KindString:
		return cmp.Compare(v.s, o.s), true
	case v.kind == KindBool && o.kind == KindBool:
		return cmp.Compare(boolRank(v.b), boolRank(o.b)), true
	case v.kind == KindOpaque && o.kind == KindOpaque && v.typ == o.typ:
		return cmp.Compare(v.s, o.s), true
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		if v.a == nil {
			return v
		}
		a := make([]Value, len(v.a))
		for i := range v.a {
			a[i] = v.a[i].Clone()
		}
		v.a = a
	case KindObject:
		v.o = v.o.Clone()
	}
	return v
}

// Interface converts the value back to plain Go data: nil, bool, int64,
// float64, string, []any, map[string]any or the raw opaque value.
func (v Value) Interface() any {
	switch v.Kind() {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.a))
		for i := range v.a {
			out[i] = v.a[i].Interface()
		}
		return out
	case KindObject:
		return v.o.Map()
	case KindOpaque:
		return v.raw
	default:
		return nil
	}
}

// String implements fmt.Stringer for debugging output.
func (v Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindOpaque:
		return v.typ + "(" + v.s + ")"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return v.Kind().String()
		}
		return string(data)
	}
}
