package cacheinfra

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 4 {
		t.Errorf("expected Capacity to be 4, got %d", cfg.Capacity)
	}

	if cfg.Backend != BackendLRU {
		t.Errorf("expected Backend to be %q, got %q", BackendLRU, cfg.Backend)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	sturdyc := func(mutate func(*Config)) Config {
		cfg := Config{
			Capacity:           100,
			Backend:            BackendSturdyc,
			NumShards:          4,
			TTL:                time.Minute,
			EvictionPercentage: 10,
		}
		mutate(&cfg)
		return cfg
	}

	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{
			name: "valid default config",
			cfg:  DefaultConfig(),
		},
		{
			name: "lru ignores sturdyc fields",
			cfg:  Config{Capacity: 2, Backend: BackendLRU},
		},
		{
			name: "empty backend means lru",
			cfg:  Config{Capacity: 2},
		},
		{
			name:      "invalid capacity - zero",
			cfg:       Config{Capacity: 0, Backend: BackendLRU},
			wantField: "Capacity",
		},
		{
			name:      "unknown backend",
			cfg:       Config{Capacity: 4, Backend: "redis"},
			wantField: "Backend",
		},
		{
			name: "valid sturdyc config",
			cfg:  sturdyc(func(*Config) {}),
		},
		{
			name:      "sturdyc zero shards",
			cfg:       sturdyc(func(c *Config) { c.NumShards = 0 }),
			wantField: "NumShards",
		},
		{
			name:      "sturdyc more shards than capacity",
			cfg:       sturdyc(func(c *Config) { c.Capacity = 2 }),
			wantField: "NumShards",
		},
		{
			name:      "sturdyc zero TTL",
			cfg:       sturdyc(func(c *Config) { c.TTL = 0 }),
			wantField: "TTL",
		},
		{
			name:      "sturdyc eviction percentage too high",
			cfg:       sturdyc(func(c *Config) { c.EvictionPercentage = 101 }),
			wantField: "EvictionPercentage",
		},
		{
			name:      "sturdyc negative eviction interval",
			cfg:       sturdyc(func(c *Config) { c.EvictionInterval = -time.Second }),
			wantField: "EvictionInterval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("expected no validation error but got: %v", err)
				}
				return
			}

			configErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
			}
			if configErr.Field != tt.wantField {
				t.Errorf("expected error field %q, got %q", tt.wantField, configErr.Field)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{
		Field:   "TestField",
		Message: "test message",
	}

	expected := "config error in field TestField: test message"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := Config{Capacity: 10, NumShards: 1, TTL: time.Minute, EvictionPercentage: 10}
	if n := len(cfg.toSturdycOptions()); n != 0 {
		t.Errorf("expected no sturdyc options, got %d", n)
	}

	cfg.EvictionInterval = time.Second
	if n := len(cfg.toSturdycOptions()); n != 1 {
		t.Errorf("expected 1 sturdyc option with eviction interval, got %d", n)
	}
}

func TestNewSturdycBackend(t *testing.T) {
	_, err := NewSturdycBackend[string](Config{Capacity: 0, NumShards: 1, TTL: time.Minute, EvictionPercentage: 10})
	if err == nil {
		t.Fatal("expected error for zero capacity")
	}

	backend, err := NewSturdycBackend[string](Config{
		Capacity:           10,
		NumShards:          1,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	if backend.Name() != BackendSturdyc {
		t.Errorf("expected name %q, got %q", BackendSturdyc, backend.Name())
	}

	if evicted := backend.Add("find::a", "A"); evicted != 0 {
		t.Errorf("expected no eviction, got %d", evicted)
	}

	got, ok := backend.Get("find::a")
	if !ok || got != "A" {
		t.Errorf("expected cached value A, got %q (ok=%v)", got, ok)
	}

	if !backend.Contains("find::a") {
		t.Error("expected Contains to report cached key")
	}

	if backend.Len() != 1 {
		t.Errorf("expected size 1, got %d", backend.Len())
	}

	backend.Purge()

	if backend.Len() != 0 {
		t.Errorf("expected empty backend after purge, got %d", backend.Len())
	}

	if backend.Contains("find::a") {
		t.Error("expected key to be gone after purge")
	}
}

func TestSturdycBackend_SizeBound(t *testing.T) {
	backend, err := NewSturdycBackend[int](Config{
		Capacity:           4,
		NumShards:          1,
		TTL:                time.Minute,
		EvictionPercentage: 25,
	})
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	for i, key := range []string{"a", "b", "c", "d", "e", "f"} {
		backend.Add(key, i)
		if backend.Len() > 4 {
			t.Fatalf("size %d exceeds capacity after adding %q", backend.Len(), key)
		}
	}
}
