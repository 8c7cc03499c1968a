package document

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strings"
)

// Document is a nested key/value document as stored in a collection.
type Document map[string]Value

// Filter is a query filter. It shares the Document representation; field
// insertion order carries no meaning.
type Filter = Document

// IDField is the name of the document identity field.
const IDField = "_id"

// FromMap converts plain Go data into a Document. Nil maps yield nil.
func FromMap(m map[string]any) Document {
	if m == nil {
		return nil
	}
	d := make(Document, len(m))
	for k, v := range m {
		d[k] = FromAny(v)
	}
	return d
}

// FromAny converts a Go value into a Value. Types without a natural
// document representation become opaque values.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case Document:
		return Object(x)
	case []Value:
		return Array(x...)
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint:
		return fromUint(uint64(x))
	case uint64:
		return fromUint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case json.Number:
		return fromNumber(x)
	case map[string]any:
		return Object(FromMap(x))
	case []any:
		out := make([]Value, len(x))
		for i := range x {
			out[i] = FromAny(x[i])
		}
		return Array(out...)
	}

	return fromReflect(v)
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func fromNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	if f, err := n.Float64(); err == nil {
		return Float(f)
	}
	return String(n.String())
}

// fromReflect handles named slice and map types ([]string, map[string]int,
// driver document types) and falls back to an opaque value.
func fromReflect(v any) Value {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Null()
		}
		if rv.Elem().Kind() == reflect.Struct {
			return Opaque(v)
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Opaque(v)
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null()
		}
		out := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = FromAny(rv.Index(i).Interface())
		}
		return Array(out...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Opaque(v)
		}
		if rv.IsNil() {
			return Null()
		}
		d := make(Document, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			d[iter.Key().String()] = FromAny(iter.Value().Interface())
		}
		return Object(d)
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	}

	return Opaque(v)
}

// Map converts the document back to plain Go data.
func (d Document) Map() map[string]any {
	if d == nil {
		return nil
	}
	m := make(map[string]any, len(d))
	for k, v := range d {
		m[k] = v.Interface()
	}
	return m
}

// IsEmpty reports whether the document has no fields. Nil documents are empty.
func (d Document) IsEmpty() bool {
	return len(d) == 0
}

// Keys returns the field names in lexicographic order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone creates a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = v.Clone()
	}
	return clone
}

// CloneAll deep copies a result set. A nil input stays nil.
func CloneAll(docs []Document) []Document {
	if docs == nil {
		return nil
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

// Equal reports whether two documents hold the same fields and values,
// regardless of insertion order.
func (d Document) Equal(o Document) bool {
	if len(d) != len(o) {
		return false
	}
	for k, v := range d {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Get resolves a dotted path ("address.city") against the document.
func (d Document) Get(path string) (Value, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := d[head]
	if !ok {
		return Value{}, false
	}
	if !nested {
		return v, true
	}
	sub, ok := v.AsObject()
	if !ok {
		return Value{}, false
	}
	return sub.Get(rest)
}

// set writes a value at a dotted path, creating intermediate objects.
func (d Document) set(path string, v Value) bool {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		d[head] = v
		return true
	}
	cur, ok := d[head]
	if !ok || cur.IsNull() {
		sub := Document{}
		d[head] = Object(sub)
		return sub.set(rest, v)
	}
	sub, ok := cur.AsObject()
	if !ok {
		return false
	}
	return sub.set(rest, v)
}

// unset removes the field at a dotted path. It reports whether a field was removed.
func (d Document) unset(path string) bool {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		if _, ok := d[head]; !ok {
			return false
		}
		delete(d, head)
		return true
	}
	sub, ok := d[head].AsObject()
	if !ok {
		return false
	}
	return sub.unset(rest)
}
