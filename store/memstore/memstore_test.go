package memstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-document-cache/document"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestCollection_InsertAssignsID(t *testing.T) {
	ctx := context.Background()
	c := New("animals", WithIDGenerator(sequentialIDs()))

	require.NoError(t, c.InsertOne(ctx, document.Document{"name": document.String("Rex")}))
	require.NoError(t, c.InsertOne(ctx, document.Document{document.IDField: document.String("custom")}))

	docs, err := c.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, document.String("id-1"), docs[0][document.IDField])
	assert.Equal(t, document.String("custom"), docs[1][document.IDField])
}

func TestCollection_InsertDoesNotAliasCaller(t *testing.T) {
	ctx := context.Background()
	c := New("animals")

	doc := document.Document{"name": document.String("Rex")}
	require.NoError(t, c.InsertOne(ctx, doc))
	doc["name"] = document.String("Max")

	_, hasID := doc[document.IDField]
	assert.False(t, hasID, "caller document must not receive the generated id")

	docs, err := c.Find(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, document.String("Rex"), docs[0]["name"])
}

func TestCollection_FindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := New("animals", WithDocuments(document.Document{"name": document.String("Rex")}))

	docs, err := c.Find(ctx, nil)
	require.NoError(t, err)
	docs[0]["name"] = document.String("changed")

	again, err := c.Find(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, document.String("Rex"), again[0]["name"])
}

func TestCollection_UpdateOneTouchesFirstMatch(t *testing.T) {
	ctx := context.Background()
	c := New("animals", WithIDGenerator(sequentialIDs()), WithDocuments(
		document.Document{"n": document.Int(1)},
		document.Document{"n": document.Int(1)},
	))

	n, err := c.UpdateOne(ctx, document.Filter{"n": document.Int(1)},
		document.Document{"$inc": document.Object(document.Document{"n": document.Int(1)})})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	docs, err := c.Find(ctx, document.Filter{"n": document.Int(2)})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, document.String("id-1"), docs[0][document.IDField])
}

func TestCollection_UpdateRejectsInvalidChanges(t *testing.T) {
	ctx := context.Background()
	c := New("animals")

	_, err := c.UpdateMany(ctx, document.Filter{"n": document.Int(1)}, document.Document{"n": document.Int(2)})
	assert.ErrorIs(t, err, document.ErrNoUpdateOperators)
}

func TestCollection_DeleteOne(t *testing.T) {
	ctx := context.Background()
	c := New("animals", WithDocuments(
		document.Document{"k": document.String("a")},
		document.Document{"k": document.String("a")},
		document.Document{"k": document.String("b")},
	))

	n, err := c.DeleteOne(ctx, document.Filter{"k": document.String("a")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, c.Len())

	n, err = c.DeleteOne(ctx, document.Filter{"k": document.String("z")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollection_DeleteInvalidFilterKeepsDocuments(t *testing.T) {
	ctx := context.Background()
	c := New("animals", WithDocuments(document.Document{"k": document.String("a")}))

	_, err := c.DeleteMany(ctx, document.Filter{"$expr": document.Bool(true)})
	assert.ErrorIs(t, err, document.ErrUnsupportedOperator)
	assert.Equal(t, 1, c.Len())
}

func TestCollection_Closed(t *testing.T) {
	ctx := context.Background()
	c := New("animals")
	require.NoError(t, c.Close(ctx))

	assert.ErrorIs(t, c.InsertOne(ctx, document.Document{"a": document.Int(1)}), ErrClosed)
	_, err := c.Find(ctx, nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Ping(ctx), ErrClosed)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(c.Ping(ctx)))
}

func TestCollection_InsertDuplicateID(t *testing.T) {
	ctx := context.Background()
	c := New("animals")
	require.NoError(t, c.Ping(ctx))

	doc := document.Document{document.IDField: document.String("A746874")}
	require.NoError(t, c.InsertOne(ctx, doc))

	err := c.InsertOne(ctx, doc)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, errors.CodeAlreadyExists, errors.GetCode(err))
	assert.Contains(t, err.Error(), "A746874")
	assert.Equal(t, 1, c.Len())
}

func TestCollection_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New("animals")
	_, err := c.Find(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
