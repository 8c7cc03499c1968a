package sqlstore

import (
	"context"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/pkg/testsupport"
)

func openTestCollection(t *testing.T, name string) *Collection {
	t.Helper()

	ctx := context.Background()
	c, err := Open(ctx, DriverSQLite, ":memory:", name)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })

	for _, doc := range testsupport.Animals(t) {
		require.NoError(t, c.InsertOne(ctx, doc))
	}
	return c
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "", "animals")
	assert.Error(t, err)
}

func TestCollection_FindPreservesKindsAndOrder(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")

	docs, err := c.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 8)

	for i, doc := range docs {
		rec, ok := doc["rec_num"].AsInt64()
		require.True(t, ok)
		assert.Equal(t, int64(i+1), rec)
	}

	assert.Equal(t, document.KindFloat, docs[0]["location_lat"].Kind())
	assert.Equal(t, testsupport.Animals(t)[2], docs[2])
}

func TestCollection_FindFilters(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")

	dogs, err := c.Find(ctx, document.Filter{"animal_type": document.String("Dog")})
	require.NoError(t, err)
	assert.Len(t, dogs, 5)

	young, err := c.Find(ctx, document.Filter{
		"age_upon_outcome_in_weeks": document.Object(document.Document{"$lt": document.Int(26)}),
	})
	require.NoError(t, err)
	assert.Len(t, young, 2)

	_, err = c.Find(ctx, document.Filter{"$text": document.String("dog")})
	assert.ErrorIs(t, err, document.ErrUnsupportedOperator)
}

func TestCollection_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")

	other, err := New(ctx, c.db, "outcomes")
	require.NoError(t, err)

	docs, err := other.Find(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Same _id in another collection is allowed.
	require.NoError(t, other.InsertOne(ctx, document.Document{document.IDField: document.String("A746874")}))
}

func TestCollection_InsertDuplicateID(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")

	err := c.InsertOne(ctx, document.Document{document.IDField: document.String("A746874")})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabase, errors.GetCode(err))
}

func TestCollection_ErrorCodes(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "oracle", "", "animals")
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

	c, err := Open(ctx, DriverSQLite, ":memory:", "animals")
	require.NoError(t, err)
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Close(ctx))

	err = c.Ping(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabase, errors.GetCode(err))

	_, err = c.Find(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabase, errors.GetCode(err))
	assert.Contains(t, err.Error(), "sqlstore:")
}

func TestCollection_InsertGeneratesID(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")

	require.NoError(t, c.InsertOne(ctx, document.Document{"name": document.String("Pepper")}))

	docs, err := c.Find(ctx, document.Filter{"name": document.String("Pepper")})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	id, ok := docs[0][document.IDField].AsString()
	assert.True(t, ok)
	assert.NotEmpty(t, id)
}

func TestCollection_Update(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")
	dogs := document.Filter{"animal_type": document.String("Dog")}
	inc := document.Document{"$inc": document.Object(document.Document{"rec_num": document.Int(100)})}

	n, err := c.UpdateOne(ctx, dogs, inc)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.UpdateMany(ctx, dogs, inc)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	docs, err := c.Find(ctx, document.Filter{"rec_num": document.Int(202)})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, document.String("Lucy"), docs[0]["name"])

	_, err = c.UpdateMany(ctx, dogs, document.Document{"name": document.String("x")})
	assert.ErrorIs(t, err, document.ErrNoUpdateOperators)
}

func TestCollection_UpdateUnchangedNotCounted(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")

	n, err := c.UpdateMany(ctx,
		document.Filter{"animal_type": document.String("Cat")},
		document.Document{"$set": document.Object(document.Document{"animal_type": document.String("Cat")})})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollection_Delete(t *testing.T) {
	ctx := context.Background()
	c := openTestCollection(t, "animals")

	n, err := c.DeleteOne(ctx, document.Filter{"outcome_type": document.String("Adoption")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.DeleteMany(ctx, document.Filter{"outcome_type": document.String("Adoption")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = c.DeleteMany(ctx, document.Filter{"outcome_type": document.String("Adoption")})
	require.NoError(t, err)
	assert.Zero(t, n)

	docs, err := c.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 4)
}
