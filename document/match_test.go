package document

import (
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func animal() Document {
	return Document{
		"_id":                       String("a1"),
		"animal_type":               String("Dog"),
		"breed":                     String("Labrador Retriever Mix"),
		"sex_upon_outcome":          String("Intact Female"),
		"age_upon_outcome_in_weeks": Float(26.5),
		"outcome":                   Object(Document{"type": String("Adoption")}),
		"tags":                      Array(String("water"), String("rescue")),
		"location_lat":              Float(30.75),
		"microchip":                 Null(),
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   bool
	}{
		{"empty filter", `{}`, true},
		{"equality", `{"animal_type": "Dog"}`, true},
		{"equality mismatch", `{"animal_type": "Cat"}`, false},
		{"dotted path", `{"outcome.type": "Adoption"}`, true},
		{"array membership", `{"tags": "rescue"}`, true},
		{"missing field matches null", `{"name": null}`, true},
		{"explicit null matches null", `{"microchip": null}`, true},
		{"range", `{"age_upon_outcome_in_weeks": {"$gte": 26, "$lte": 156}}`, true},
		{"range excluded", `{"age_upon_outcome_in_weeks": {"$gt": 30}}`, false},
		{"in", `{"breed": {"$in": ["Labrador Retriever Mix", "Chesapeake Bay Retriever"]}}`, true},
		{"nin", `{"breed": {"$nin": ["Labrador Retriever Mix"]}}`, false},
		{"ne", `{"sex_upon_outcome": {"$ne": "Intact Male"}}`, true},
		{"exists true", `{"outcome": {"$exists": true}}`, true},
		{"exists false", `{"name": {"$exists": false}}`, true},
		{"and", `{"$and": [{"animal_type": "Dog"}, {"sex_upon_outcome": "Intact Female"}]}`, true},
		{"or", `{"$or": [{"animal_type": "Cat"}, {"breed": "Labrador Retriever Mix"}]}`, true},
		{"nor", `{"$nor": [{"animal_type": "Dog"}]}`, false},
		{"int matches float", `{"location_lat": {"$lt": 31}}`, true},
		{"string vs number does not order", `{"animal_type": {"$gt": 1}}`, false},
		{"nested object equality", `{"outcome": {"type": "Adoption"}}`, true},
	}

	doc := animal()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseJSON([]byte(tt.filter))
			require.NoError(t, err)

			got, err := Matches(doc, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatches_NilFilterMatchesAll(t *testing.T) {
	ok, err := Matches(animal(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatches_Errors(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   error
	}{
		{"unknown top level operator", `{"$where": "x"}`, ErrUnsupportedOperator},
		{"unknown field operator", `{"breed": {"$regex": "Lab"}}`, ErrUnsupportedOperator},
		{"in without array", `{"breed": {"$in": "Lab"}}`, ErrInvalidOperand},
		{"or without array", `{"$or": {"a": 1}}`, ErrInvalidOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseJSON([]byte(tt.filter))
			require.NoError(t, err)

			_, err = Matches(animal(), filter)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestApplyUpdate(t *testing.T) {
	changes, err := ParseJSON([]byte(`{"$set": {"outcome.type": "Transfer", "name": "Rex"}, "$inc": {"age_upon_outcome_in_weeks": 1}, "$unset": {"microchip": ""}}`))
	require.NoError(t, err)

	orig := animal()
	out, changed, err := ApplyUpdate(orig, changes)
	require.NoError(t, err)
	assert.True(t, changed)

	v, _ := out.Get("outcome.type")
	assert.True(t, v.Equal(String("Transfer")))
	assert.True(t, out["name"].Equal(String("Rex")))
	assert.True(t, out["age_upon_outcome_in_weeks"].Equal(Float(27.5)))
	_, has := out["microchip"]
	assert.False(t, has)

	// input untouched
	v, _ = orig.Get("outcome.type")
	assert.True(t, v.Equal(String("Adoption")))
}

func TestApplyUpdate_NoChange(t *testing.T) {
	changes := Document{"$set": Object(Document{"animal_type": String("Dog")})}

	_, changed, err := ApplyUpdate(animal(), changes)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApplyUpdate_IntIncrementStaysInt(t *testing.T) {
	doc := Document{"visits": Int(2)}
	out, _, err := ApplyUpdate(doc, Document{"$inc": Object(Document{"visits": Int(3)})})
	require.NoError(t, err)

	n, ok := out["visits"].AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(5), n)
}

func TestApplyUpdate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		changes Document
		want    error
	}{
		{"replacement document", Document{"name": String("Rex")}, ErrNoUpdateOperators},
		{"empty", Document{}, ErrNoUpdateOperators},
		{"unknown operator", Document{"$push": Object(Document{"tags": String("x")})}, ErrUnsupportedOperator},
		{"id change", Document{"$set": Object(Document{"_id": String("b")})}, ErrInvalidOperand},
		{"inc non numeric operand", Document{"$inc": Object(Document{"age": String("x")})}, ErrInvalidOperand},
		{"inc non numeric field", Document{"$inc": Object(Document{"breed": Int(1)})}, ErrInvalidOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ApplyUpdate(animal(), tt.changes)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}
