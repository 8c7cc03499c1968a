package cacheinfra

// Backend stores cached values keyed by their serialized query.
//
// Backends are not safe for concurrent use on their own; the cache service
// serializes every call behind a single lock.
type Backend[T any] interface {
	// Get returns the value for key and marks it most recently used.
	Get(key string) (T, bool)
	// Contains reports whether key is present without changing its recency.
	Contains(key string) bool
	// Add inserts a new entry and evicts when the backend is over capacity.
	// It returns the number of evicted entries.
	Add(key string, value T) int
	// Purge removes every entry.
	Purge()
	// Len returns the number of stored entries.
	Len() int
	// Name identifies the backend in stats and logs.
	Name() string
}

// NewBackend builds the backend selected by cfg.Backend.
func NewBackend[T any](cfg Config) (Backend[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == BackendSturdyc {
		b, err := NewSturdycBackend[T](cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	b, err := NewLRUBackend[T](cfg.Capacity)
	if err != nil {
		return nil, err
	}
	return b, nil
}
