package cache

import (
	"context"

	"github.com/goliatone/go-document-cache/document"
)

// KeySerializer builds a cache key from a method name and a query filter.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, filter document.Filter) string
}

// FetchFn is the function signature Service expects when fetching from the source of truth.
// It never fails: the source reports its own errors and returns a benign value.
type FetchFn[T any] func(ctx context.Context) T

// Service exposes the read-through caching operations used by the cached repository.
// It is exported so that other packages can reuse the default serializer or provide alternate backends.
type Service[T any] interface {
	// GetOrFetch returns the cached value for key, refreshing its recency,
	// or calls fetchFn, stores its result and evicts if over capacity.
	// hit reports which path was taken.
	GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[T]) (value T, hit bool)
	// Contains reports whether key is cached without touching its recency.
	Contains(key string) bool
	// Clear removes every entry.
	Clear(ctx context.Context)
	// Len returns the number of cached entries.
	Len() int
	// Stats returns a snapshot of the cache counters.
	Stats() Stats
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Evictions int64  `json:"evictions"`
	Clears    int64  `json:"clears"`
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
	Backend   string `json:"backend"`
}

// GetOrFetch is a convenience wrapper that discards the hit flag.
func GetOrFetch[T any](ctx context.Context, service Service[T], key string, fetchFn FetchFn[T]) T {
	value, _ := service.GetOrFetch(ctx, key, fetchFn)
	return value
}
