package mongostore

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-document-cache/document"
)

// ToBSON converts a document to an ordered BSON document with sorted keys.
// A nil document becomes an empty one, which Mongo reads as "match all".
func ToBSON(doc document.Document) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, k := range doc.Keys() {
		out = append(out, bson.E{Key: k, Value: toBSONValue(doc[k])})
	}
	return out
}

func toBSONValue(v document.Value) any {
	switch v.Kind() {
	case document.KindBool:
		b, _ := v.AsBool()
		return b
	case document.KindInt:
		i, _ := v.AsInt64()
		return i
	case document.KindFloat:
		f, _ := v.AsFloat64()
		return f
	case document.KindString:
		s, _ := v.AsString()
		return s
	case document.KindArray:
		elems, _ := v.AsArray()
		out := make(bson.A, len(elems))
		for i, e := range elems {
			out[i] = toBSONValue(e)
		}
		return out
	case document.KindObject:
		d, _ := v.AsObject()
		return ToBSON(d)
	case document.KindOpaque:
		return v.Raw()
	default:
		return nil
	}
}

// FromBSON converts a decoded BSON value. ObjectIDs, datetimes and other
// BSON specific types become opaque values that convert back unchanged.
func FromBSON(v any) document.Value {
	switch x := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return document.Null()
	case bool:
		return document.Bool(x)
	case int32:
		return document.Int(int64(x))
	case int64:
		return document.Int(x)
	case int:
		return document.Int(int64(x))
	case float64:
		return document.Float(x)
	case string:
		return document.String(x)
	case bson.D:
		return document.Object(fromD(x))
	case bson.M:
		return document.Object(fromM(x))
	case bson.A:
		out := make([]document.Value, len(x))
		for i := range x {
			out[i] = FromBSON(x[i])
		}
		return document.Array(out...)
	case primitive.ObjectID, primitive.DateTime, primitive.Timestamp,
		primitive.Decimal128, primitive.Binary, primitive.Regex,
		primitive.MinKey, primitive.MaxKey:
		return document.Opaque(x)
	default:
		return document.FromAny(x)
	}
}

func fromD(d bson.D) document.Document {
	out := make(document.Document, len(d))
	for _, e := range d {
		out[e.Key] = FromBSON(e.Value)
	}
	return out
}

func fromM(m bson.M) document.Document {
	out := make(document.Document, len(m))
	for k, v := range m {
		out[k] = FromBSON(v)
	}
	return out
}

func decodeRaw(raw bson.Raw) (document.Document, error) {
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return fromD(d), nil
}
