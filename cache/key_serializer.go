package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-document-cache/document"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer implements KeySerializer by walking the document value
// variant. Field names are sorted at every level and every text segment is
// quoted, so equivalent filters share a key and distinct filters cannot collide.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from a method name and a filter.
// A nil or empty filter yields the bare method name, the "match all" key.
func (s *defaultKeySerializer) SerializeKey(method string, filter document.Filter) string {
	if len(filter) == 0 {
		return method
	}

	var b strings.Builder
	b.WriteString(method)
	b.WriteString(KeySeparator)
	s.writeDocument(&b, filter)
	return b.String()
}

// writeDocument handles nested documents with sorted keys for determinism
func (s *defaultKeySerializer) writeDocument(b *strings.Builder, d document.Document) {
	keys := d.Keys()
	fmt.Fprintf(b, "m[%d]:{", len(keys))
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		s.writeValue(b, d[k])
	}
	b.WriteByte('}')
}

// writeValue emits the canonical form of a single value.
func (s *defaultKeySerializer) writeValue(b *strings.Builder, v document.Value) {
	switch v.Kind() {
	case document.KindNull:
		b.WriteString("nil")
	case document.KindBool:
		x, _ := v.AsBool()
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(x))
	case document.KindInt:
		x, _ := v.AsInt64()
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(x, 10))
	case document.KindFloat:
		x, _ := v.AsFloat64()
		if x == 0 {
			// -0 and 0 compare equal
			x = 0
		}
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case document.KindString:
		x, _ := v.AsString()
		b.WriteString("s:")
		b.WriteString(strconv.Quote(x))
	case document.KindArray:
		elems, _ := v.AsArray()
		fmt.Fprintf(b, "a[%d]:{", len(elems))
		for i, e := range elems {
			if i > 0 {
				b.WriteByte(',')
			}
			s.writeValue(b, e)
		}
		b.WriteByte('}')
	case document.KindObject:
		d, _ := v.AsObject()
		s.writeDocument(b, d)
	case document.KindOpaque:
		typ, text, _ := v.OpaqueText()
		b.WriteString("x:")
		b.WriteString(strconv.Quote(typ))
		b.WriteByte(':')
		b.WriteString(strconv.Quote(text))
	default:
		// Unreachable with the current Kind set; keep a stable fallback.
		b.WriteString("fallback:")
		b.WriteString(strconv.Quote(v.String()))
	}
}
