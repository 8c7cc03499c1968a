package document

import (
	"strings"

	"github.com/jmgilman/go/errors"
)

// ErrNoUpdateOperators is returned when an update document has no
// operator fields; replacing whole documents is not an update.
var ErrNoUpdateOperators = errors.New(errors.CodeInvalidInput, "document: update document must contain only operators")

// ApplyUpdate applies an update document ($set, $unset, $inc) to a copy of
// doc. changed reports whether the result differs from the input.
func ApplyUpdate(doc Document, changes Document) (out Document, changed bool, err error) {
	if len(changes) == 0 || !isOperatorDoc(changes) {
		return nil, false, ErrNoUpdateOperators
	}

	out = doc.Clone()
	if out == nil {
		out = Document{}
	}

	for _, op := range changes.Keys() {
		fields, ok := changes[op].AsObject()
		if !ok {
			return nil, false, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "%s needs a document", op)
		}
		for _, path := range fields.Keys() {
			if path == IDField || strings.HasPrefix(path, IDField+".") {
				return nil, false, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "%s cannot modify %s", op, IDField)
			}
			operand := fields[path]

			switch op {
			case "$set":
				prev, had := out.Get(path)
				if had && prev.Equal(operand) && prev.Kind() == operand.Kind() {
					continue
				}
				if !out.set(path, operand.Clone()) {
					return nil, false, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "cannot set %s", path)
				}
				changed = true
			case "$unset":
				if out.unset(path) {
					changed = true
				}
			case "$inc":
				next, err := increment(out, path, operand)
				if err != nil {
					return nil, false, err
				}
				if !out.set(path, next) {
					return nil, false, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "cannot set %s", path)
				}
				changed = true
			default:
				return nil, false, errors.Wrapf(ErrUnsupportedOperator, errors.CodeInvalidInput, "%s", op)
			}
		}
	}

	return out, changed, nil
}

func increment(doc Document, path string, by Value) (Value, error) {
	if _, ok := by.number(); !ok {
		return Value{}, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "$inc needs a number for %s", path)
	}

	cur, ok := doc.Get(path)
	if !ok || cur.IsNull() {
		return by, nil
	}

	ci, curInt := cur.AsInt64()
	bi, byInt := by.AsInt64()
	if curInt && byInt {
		return Int(ci + bi), nil
	}

	cf, ok := cur.number()
	if !ok {
		return Value{}, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "$inc on non-numeric field %s", path)
	}
	bf, _ := by.number()
	return Float(cf + bf), nil
}

// ValidateUpdate reports whether changes is a well-formed update document
// without applying it to anything.
func ValidateUpdate(changes Document) error {
	_, _, err := ApplyUpdate(Document{}, changes)
	return err
}
