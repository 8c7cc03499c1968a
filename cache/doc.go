// Package cache provides the bounded query cache and key normalization used by
// the cached document repository.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - Service: a generic read-through cache with a fixed capacity
//   - KeySerializer: builds canonical cache keys from a method name and a filter
//
// # Basic Usage
//
//	svc, err := cache.NewService[[]document.Document](cache.DefaultConfig(), logger)
//	serializer := cache.NewDefaultKeySerializer()
//
//	key := serializer.SerializeKey("find", filter)
//	docs, hit := svc.GetOrFetch(ctx, key, func(ctx context.Context) []document.Document {
//		return gateway.Find(ctx, filter)
//	})
//
// # Key Normalization
//
// Keys are the full canonical text of the filter, never a hash:
//
//   - Field names are sorted at every nesting level and quoted
//   - Every value kind has its own prefix (b:, i:, f:, s:, a[n], m[n], x:)
//   - Strings are quoted, so separators inside values cannot alias structure
//   - Opaque driver values use their type name plus stable text
//   - A nil or empty filter yields the bare method name, the "match all" key
//
// Integers and floats keep distinct prefixes, so {"n": 1} and {"n": 1.0} are
// cached separately. Floating point -0 and 0 share a key.
//
// # Eviction
//
// NewService always uses the "lru" backend, which keeps exact recency order:
// a hit moves the entry to the most recent position and a miss that overflows
// capacity evicts exactly one entry, the least recently used. Entries never
// expire.
//
// NewTTLService builds a separate expiring cache on sturdyc for short-lived
// status values such as store health. It evicts by expiry, runs sturdyc's
// background eviction and must not back document reads.
//
// # Concurrency
//
// A single mutex guards lookup, fetch, insert and eviction. Concurrent readers
// of a missing key wait for the first fetch and then hit.
//
// # Staleness
//
// Nothing in this package observes writes to the underlying store. Cached
// results stay until they are evicted or Clear is called.
package cache
