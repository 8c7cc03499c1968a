package document

import (
	"strings"

	"github.com/jmgilman/go/errors"
)

// ErrUnsupportedOperator is returned when a filter or update uses an
// operator the in-process evaluator does not implement.
var ErrUnsupportedOperator = errors.New(errors.CodeInvalidInput, "document: unsupported operator")

// ErrInvalidOperand is returned when an operator receives a value of the wrong kind.
var ErrInvalidOperand = errors.New(errors.CodeInvalidInput, "document: invalid operand")

// Matches reports whether doc satisfies filter. An empty filter matches
// every document. Supported: implicit equality, dotted paths, array
// membership, $eq $ne $gt $gte $lt $lte $in $nin $exists, $and $or $nor.
func Matches(doc Document, filter Filter) (bool, error) {
	for _, field := range filter.Keys() {
		cond := filter[field]

		var (
			ok  bool
			err error
		)
		switch field {
		case "$and", "$or", "$nor":
			ok, err = matchLogical(doc, field, cond)
		default:
			if strings.HasPrefix(field, "$") {
				return false, errors.Wrapf(ErrUnsupportedOperator, errors.CodeInvalidInput, "%s", field)
			}
			ok, err = matchField(doc, field, cond)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchLogical(doc Document, op string, cond Value) (bool, error) {
	clauses, ok := cond.AsArray()
	if !ok || len(clauses) == 0 {
		return false, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "%s needs a non-empty array", op)
	}

	for _, clause := range clauses {
		sub, ok := clause.AsObject()
		if !ok {
			return false, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "%s clauses must be documents", op)
		}
		matched, err := Matches(doc, sub)
		if err != nil {
			return false, err
		}
		switch {
		case op == "$and" && !matched:
			return false, nil
		case op == "$or" && matched:
			return true, nil
		case op == "$nor" && matched:
			return false, nil
		}
	}
	return op != "$or", nil
}

func matchField(doc Document, field string, cond Value) (bool, error) {
	actual, present := doc.Get(field)

	if ops, ok := cond.AsObject(); ok && isOperatorDoc(ops) {
		for _, op := range ops.Keys() {
			matched, err := matchOperator(actual, present, op, ops[op])
			if err != nil || !matched {
				return false, err
			}
		}
		return true, nil
	}

	return equalsOrContains(actual, present, cond), nil
}

func isOperatorDoc(d Document) bool {
	if len(d) == 0 {
		return false
	}
	for k := range d {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

// equalsOrContains implements implicit equality: a missing field matches
// null, and an array field matches when any element equals the operand.
func equalsOrContains(actual Value, present bool, want Value) bool {
	if !present {
		return want.IsNull()
	}
	if actual.Equal(want) {
		return true
	}
	if elems, ok := actual.AsArray(); ok {
		for _, e := range elems {
			if e.Equal(want) {
				return true
			}
		}
	}
	return false
}

func matchOperator(actual Value, present bool, op string, operand Value) (bool, error) {
	switch op {
	case "$eq":
		return equalsOrContains(actual, present, operand), nil
	case "$ne":
		return !equalsOrContains(actual, present, operand), nil
	case "$gt", "$gte", "$lt", "$lte":
		if !present {
			return false, nil
		}
		return compareAny(actual, op, operand), nil
	case "$in", "$nin":
		candidates, ok := operand.AsArray()
		if !ok {
			return false, errors.Wrapf(ErrInvalidOperand, errors.CodeInvalidInput, "%s needs an array", op)
		}
		found := false
		for _, c := range candidates {
			if equalsOrContains(actual, present, c) {
				found = true
				break
			}
		}
		if op == "$in" {
			return found, nil
		}
		return !found, nil
	case "$exists":
		want, ok := operand.AsBool()
		if !ok {
			n, isNum := operand.number()
			if !isNum {
				return false, errors.Wrap(ErrInvalidOperand, errors.CodeInvalidInput, "$exists needs a boolean")
			}
			want = n != 0
		}
		return present == want, nil
	default:
		return false, errors.Wrapf(ErrUnsupportedOperator, errors.CodeInvalidInput, "%s", op)
	}
}

// compareAny applies an ordering operator to a value, or to any element
// of an array value.
func compareAny(actual Value, op string, operand Value) bool {
	if compareOne(actual, op, operand) {
		return true
	}
	if elems, ok := actual.AsArray(); ok {
		for _, e := range elems {
			if compareOne(e, op, operand) {
				return true
			}
		}
	}
	return false
}

func compareOne(actual Value, op string, operand Value) bool {
	c, ok := actual.compare(operand)
	if !ok {
		return false
	}
	switch op {
	case "$gt":
		return c > 0
	case "$gte":
		return c >= 0
	case "$lt":
		return c < 0
	default:
		return c <= 0
	}
}
