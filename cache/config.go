package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-document-cache/internal/cacheinfra"
)

// Backend names.
const (
	BackendLRU     = cacheinfra.BackendLRU
	BackendSturdyc = cacheinfra.BackendSturdyc
)

// Config configures the read cache built by NewService. The read cache
// always keeps exact least-recently-used order and never expires entries.
type Config struct {
	// Capacity is the maximum number of cached query results. Default: 4
	Capacity int `yaml:"capacity" json:"capacity"`
	// Backend must be "lru" or empty. sturdyc is only available to
	// expiring caches through TTLConfig.
	Backend string `yaml:"backend" json:"backend"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity: cacheinfra.DefaultCapacity,
		Backend:  BackendLRU,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.Backend, validation.In(BackendLRU).
			Error("must be lru; sturdyc does not keep least-recently-used order")),
	)
	if err != nil {
		return err
	}
	return c.toInternal().Validate()
}

func (c Config) toInternal() cacheinfra.Config {
	cfg := cacheinfra.DefaultConfig()
	cfg.Capacity = c.Capacity
	cfg.Backend = cacheinfra.BackendLRU
	return cfg
}

// TTLConfig configures an expiring cache backed by sturdyc. Entries expire
// after TTL and a full shard evicts the entries closest to expiry, so it is
// meant for short-lived status values, never for document reads.
type TTLConfig struct {
	Capacity           int           `yaml:"capacity" json:"capacity"`
	NumShards          int           `yaml:"num_shards" json:"num_shards"`
	TTL                time.Duration `yaml:"ttl" json:"ttl"`
	EvictionPercentage int           `yaml:"eviction_percentage" json:"eviction_percentage"`
	EvictionInterval   time.Duration `yaml:"eviction_interval" json:"eviction_interval"`
}

// DefaultTTLConfig keeps results for ten seconds.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Capacity:           16,
		NumShards:          1,
		TTL:                10 * time.Second,
		EvictionPercentage: 10,
	}
}

// Validate checks the sturdyc tuning values.
func (c TTLConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return err
	}
	return c.toInternal().Validate()
}

func (c TTLConfig) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		Backend:            cacheinfra.BackendSturdyc,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}
