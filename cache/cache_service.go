package cache

import (
	"context"
	"sync"

	"github.com/goliatone/go-document-cache/internal/cacheinfra"
	"github.com/goliatone/go-document-cache/pkg/logging"
)

// service is the default Service implementation. A single mutex guards the
// backend and the counters; GetOrFetch holds it across the fetch so two
// readers of the same missing key never both reach the source.
type service[T any] struct {
	mu       sync.Mutex
	backend  cacheinfra.Backend[T]
	capacity int
	logger   *logging.Logger

	hits      int64
	misses    int64
	evictions int64
	clears    int64
}

// NewService creates the read cache from cfg. A nil logger disables logging.
func NewService[T any](cfg Config, logger *logging.Logger) (Service[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newService[T](cfg.toInternal(), logger)
}

// NewTTLService creates an expiring cache on the sturdyc backend. Hits do
// not refresh recency and entries vanish after cfg.TTL.
func NewTTLService[T any](cfg TTLConfig, logger *logging.Logger) (Service[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newService[T](cfg.toInternal(), logger)
}

func newService[T any](cfg cacheinfra.Config, logger *logging.Logger) (Service[T], error) {
	backend, err := cacheinfra.NewBackend[T](cfg)
	if err != nil {
		return nil, err
	}

	return &service[T]{
		backend:  backend,
		capacity: cfg.Capacity,
		logger:   logging.OrNoop(logger).With("component", "cache", "backend", backend.Name()),
	}, nil
}

func (s *service[T]) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[T]) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.backend.Get(key); ok {
		s.hits++
		return value, true
	}

	s.misses++
	value := fetchFn(ctx)

	if evicted := s.backend.Add(key, value); evicted > 0 {
		s.evictions += int64(evicted)
		s.logger.LogCacheEviction(ctx, key, evicted, s.backend.Len())
	}

	return value, false
}

func (s *service[T]) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Contains(key)
}

func (s *service[T]) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.backend.Len()
	s.backend.Purge()
	s.clears++
	s.logger.LogCacheClear(ctx, removed)
}

func (s *service[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Len()
}

func (s *service[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Clears:    s.clears,
		Size:      s.backend.Len(),
		Capacity:  s.capacity,
		Backend:   s.backend.Name(),
	}
}
