package document

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/jmgilman/go/errors"
)

// MarshalJSON encodes the value as natural JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		if v.a == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.a)
	case KindObject:
		return json.Marshal(v.o)
	case KindOpaque:
		if data, err := json.Marshal(v.raw); err == nil {
			return data, nil
		}
		return json.Marshal(v.s)
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "document: cannot marshal kind %s", v.kind)
	}
}

// UnmarshalJSON decodes natural JSON. Integral numbers become KindInt.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// UnmarshalJSON decodes a JSON object into the document.
func (d *Document) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	if raw == nil {
		*d = nil
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return errors.Newf(errors.CodeInvalidInput, "document: expected JSON object, got %T", raw)
	}
	*d = FromMap(m)
	return nil
}

// ParseJSON decodes a JSON object into a Document. Empty input yields a nil
// document, which filters treat as "match all".
func ParseJSON(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseJSONArray decodes a JSON array of objects.
func ParseJSONArray(data []byte) ([]Document, error) {
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
