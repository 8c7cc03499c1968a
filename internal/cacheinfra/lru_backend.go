package cacheinfra

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// lruBackend keeps exact recency order using simplelru. Position order is
// never exposed; callers only observe hits, misses and evictions.
type lruBackend[T any] struct {
	lru     *simplelru.LRU[string, T]
	evicted int
}

// NewLRUBackend creates an exact LRU backend holding at most capacity entries.
// Inserting into a full backend evicts exactly one entry, the least recently
// read or inserted one.
func NewLRUBackend[T any](capacity int) (*lruBackend[T], error) {
	if capacity <= 0 {
		return nil, &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	b := &lruBackend[T]{}
	lru, err := simplelru.NewLRU[string, T](capacity, b.onEvict)
	if err != nil {
		return nil, err
	}
	b.lru = lru
	return b, nil
}

func (b *lruBackend[T]) onEvict(string, T) {
	b.evicted++
}

func (b *lruBackend[T]) Get(key string) (T, bool) {
	return b.lru.Get(key)
}

func (b *lruBackend[T]) Contains(key string) bool {
	return b.lru.Contains(key)
}

func (b *lruBackend[T]) Add(key string, value T) int {
	b.evicted = 0
	b.lru.Add(key, value)
	return b.evicted
}

func (b *lruBackend[T]) Purge() {
	b.lru.Purge()
	b.evicted = 0
}

func (b *lruBackend[T]) Len() int {
	return b.lru.Len()
}

func (b *lruBackend[T]) Name() string {
	return BackendLRU
}
