package cacheinfra

import "time"

// Backend names accepted by Config.Backend.
const (
	BackendLRU     = "lru"
	BackendSturdyc = "sturdyc"
)

// DefaultCapacity is the number of query results kept by default.
const DefaultCapacity = 4

// Config holds the configuration for the cache backends.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0. Default: 4
	Capacity int

	// Backend selects the storage strategy. "lru" keeps exact recency order and
	// evicts exactly one least-recently-used entry per overflow. "sturdyc" trades
	// exact ordering for sharding and TTL expiry.
	Backend string

	// NumShards determines the number of sturdyc shards. Each shard holds
	// Capacity/NumShards entries, so Capacity must be at least NumShards.
	NumShards int

	// TTL is the sturdyc time-to-live for cached entries.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of a sturdyc shard to evict
	// when it reaches capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often sturdyc checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config for the exact LRU backend.
func DefaultConfig() Config {
	return Config{
		Capacity:           DefaultCapacity,
		Backend:            BackendLRU,
		NumShards:          1,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EvictionInterval:   0, // Use default
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	switch c.Backend {
	case "", BackendLRU:
		return nil
	case BackendSturdyc:
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of lru, sturdyc"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.Capacity < c.NumShards {
		return &ConfigError{Field: "NumShards", Message: "must not exceed Capacity"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
