package repositorycache

import (
	"context"

	"github.com/goliatone/go-document-cache/cache"
	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/store"
)

// ReadMethod is the method name used to build cache keys for reads.
const ReadMethod = "find"

// Gateway is the document gateway the repository decorates.
type Gateway interface {
	Insert(ctx context.Context, doc document.Document) (bool, error)
	Find(ctx context.Context, filter document.Filter) []document.Document
	Update(ctx context.Context, filter document.Filter, changes document.Document, many bool) (int64, error)
	Delete(ctx context.Context, filter document.Filter, many bool) (int64, error)
}

// Interface assertion to ensure the store gateway can be decorated
var _ Gateway = (*store.Gateway)(nil)

// CachedRepository decorates a gateway with a bounded read cache
type CachedRepository struct {
	base          Gateway
	cache         cache.Service[[]document.Document]
	keySerializer cache.KeySerializer
}

// New creates a new CachedRepository that wraps the gateway with caching
func New(base Gateway, cacheService cache.Service[[]document.Document], keySerializer cache.KeySerializer) *CachedRepository {
	if keySerializer == nil {
		keySerializer = cache.NewDefaultKeySerializer()
	}
	return &CachedRepository{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
	}
}

// Create inserts a document. The cache is not touched.
func (c *CachedRepository) Create(ctx context.Context, doc document.Document) (bool, error) {
	return c.base.Insert(ctx, doc)
}

// Read queries the gateway directly, bypassing the cache
func (c *CachedRepository) Read(ctx context.Context, filter document.Filter) []document.Document {
	return c.base.Find(ctx, filter)
}

// ReadCached returns the documents matching filter, serving repeated filters
// from the cache
func (c *CachedRepository) ReadCached(ctx context.Context, filter document.Filter) []document.Document {
	docs, _ := c.ReadCachedWithStatus(ctx, filter)
	return docs
}

// ReadCachedWithStatus is ReadCached that also reports whether the result
// came from the cache. Callers receive copies, so mutating them never changes
// what later reads see.
func (c *CachedRepository) ReadCachedWithStatus(ctx context.Context, filter document.Filter) ([]document.Document, bool) {
	key := c.keySerializer.SerializeKey(ReadMethod, filter)
	docs, hit := c.cache.GetOrFetch(ctx, key, func(ctx context.Context) []document.Document {
		return c.base.Find(ctx, filter)
	})
	return document.CloneAll(docs), hit
}

// ClearCache drops every cached read
func (c *CachedRepository) ClearCache(ctx context.Context) {
	c.cache.Clear(ctx)
}

// Update modifies matching documents. Cached reads are not invalidated.
func (c *CachedRepository) Update(ctx context.Context, filter document.Filter, changes document.Document, many bool) (int64, error) {
	return c.base.Update(ctx, filter, changes, many)
}

// Delete removes matching documents. Cached reads are not invalidated.
func (c *CachedRepository) Delete(ctx context.Context, filter document.Filter, many bool) (int64, error) {
	return c.base.Delete(ctx, filter, many)
}

// CacheStats returns the cache counters
func (c *CachedRepository) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// IsCached reports whether filter currently has a cached result. It does not
// refresh recency.
func (c *CachedRepository) IsCached(filter document.Filter) bool {
	return c.cache.Contains(c.keySerializer.SerializeKey(ReadMethod, filter))
}
