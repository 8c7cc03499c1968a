package cacheinfra

import (
	"github.com/viccon/sturdyc"
)

// sturdycBackend wraps a sturdyc client. sturdyc shards its keys and evicts a
// percentage of the entries closest to expiry when a shard fills up, so the
// size bound holds but eviction order is not least-recently-used.
type sturdycBackend[T any] struct {
	client *sturdyc.Client[T]
}

// NewSturdycBackend creates a new sturdyc cache backend.
// It validates the configuration and initializes a sturdyc client with the provided settings.
//
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New();
// EvictionInterval is applied as an option when set.
func NewSturdycBackend[T any](cfg Config) (*sturdycBackend[T], error) {
	cfg.Backend = BackendSturdyc
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[T](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.toSturdycOptions()...,
	)

	return &sturdycBackend[T]{client: client}, nil
}

// toSturdycOptions converts the optional parts of Config to sturdyc options.
func (c Config) toSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

func (s *sturdycBackend[T]) Get(key string) (T, bool) {
	return s.client.Get(key)
}

func (s *sturdycBackend[T]) Contains(key string) bool {
	_, ok := s.client.Get(key)
	return ok
}

// Add stores the value. sturdyc only reports that an eviction ran; the size
// difference tells how many entries went.
func (s *sturdycBackend[T]) Add(key string, value T) int {
	before := s.client.Size()
	if !s.client.Set(key, value) {
		return 0
	}
	return max(before+1-s.client.Size(), 0)
}

// Purge removes all entries from the cache.
func (s *sturdycBackend[T]) Purge() {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
}

func (s *sturdycBackend[T]) Len() int {
	return s.client.Size()
}

func (s *sturdycBackend[T]) Name() string {
	return BackendSturdyc
}
