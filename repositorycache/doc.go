// Package repositorycache provides the cached document repository.
//
// # Overview
//
// CachedRepository wraps a document gateway and serves repeated read filters
// from a bounded LRU cache. Every other operation is delegated unchanged.
//
// # Basic Usage
//
//	gateway := store.New(memstore.New("animals"))
//	svc, _ := cache.NewService[[]document.Document](cache.DefaultConfig(), logger)
//
//	repo := repositorycache.New(gateway, svc, cache.NewDefaultKeySerializer())
//
//	dogs := repo.ReadCached(ctx, document.Filter{"animal_type": document.String("Dog")})
//
// # Cached vs Pass-through Operations
//
// Cached:
//   - ReadCached, ReadCachedWithStatus
//
// Pass-through:
//   - Create, Read, Update, Delete
//
// # Caching Behavior
//
//  1. Normalize the filter into a key (method "find" plus canonical filter text)
//  2. On a hit, move the entry to most recently used and return it
//  3. On a miss, call the gateway, store the result as most recently used
//  4. Evict the least recently used entry when the cache is over capacity
//  5. Return a copy of the result
//
// A read whose store call failed yields an empty result, and that empty
// result is cached like any other.
//
// # Staleness
//
// Writes never invalidate cached reads. After Create, Update or Delete a
// cached filter keeps returning its previous result until it is evicted or
// ClearCache is called. Callers that need fresh data use Read or clear first.
//
// # See Also
//
// For key normalization and cache configuration, see the cache package.
// For container wiring, see the pkg/di package.
package repositorycache
