package mirror

import (
	"fmt"
	"time"

	"bank-admin/pkg/cache"
	"bank-admin/pkg/cache/memory"
	"bank-admin/pkg/cache/redis"
	"bank-admin/pkg/writer"
)

// Store backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config configures the account mirror.
type Config struct {
	// Backend selects the store: none, memory or redis. "none" disables the mirror.
	Backend string `toml:"backend" env:"BANKADMIN_MIRROR_BACKEND" validate:"omitempty,oneof=none memory redis"`

	// Namespace prefixes every key ("accounts")
	Namespace string `toml:"namespace"`

	// ListTTL is how long the full listing is served from the store
	ListTTL time.Duration `toml:"list_ttl" env:"BANKADMIN_MIRROR_LIST_TTL" validate:"min=0"`

	// AccountTTL is how long a single account is served from the store
	AccountTTL time.Duration `toml:"account_ttl" env:"BANKADMIN_MIRROR_ACCOUNT_TTL" validate:"min=0"`

	// NotFoundTTL is how long a 404 for an id is remembered
	NotFoundTTL time.Duration `toml:"not_found_ttl" env:"BANKADMIN_MIRROR_NOT_FOUND_TTL" validate:"min=0"`

	// MaxEntries bounds the memory store (0 = unlimited)
	MaxEntries int `toml:"max_entries" validate:"min=0"`

	// Warm seeds per-id entries in the background after each listing
	Warm bool `toml:"warm" env:"BANKADMIN_MIRROR_WARM"`

	// Writer configures the background warmer
	Writer writer.AsyncWriterConfig `toml:"writer"`

	// Redis configures the redis backend
	Redis redis.RedisStoreConfig `toml:"redis"`
}

// DefaultConfig returns the mirror defaults. The mirror is off.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendNone,
		Namespace:   "accounts",
		ListTTL:     15 * time.Second,
		AccountTTL:  30 * time.Second,
		NotFoundTTL: 5 * time.Second,
		MaxEntries:  10000,
		Warm:        true,
		Writer: writer.AsyncWriterConfig{
			QueueSize:   1000,
			Workers:     2,
			MaxWaitTime: 10 * time.Millisecond,
		},
		Redis: redis.DefaultRedisStoreConfig(),
	}
}

// Enabled reports whether a store backend is selected.
func (c Config) Enabled() bool {
	return c.Backend != "" && c.Backend != BackendNone
}

func (c Config) ttlPolicy() cache.TTLPolicy {
	longest := c.ListTTL
	if c.AccountTTL > longest {
		longest = c.AccountTTL
	}
	return cache.TTLPolicy{DefaultTTL: c.AccountTTL, MaxTTL: longest}
}

// NewStore builds the store selected by Backend. It returns nil for "none".
func NewStore(c Config) (cache.Store, error) {
	switch c.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return memory.NewMemoryStore(memory.MemoryStoreConfig{
			MaxEntries: c.MaxEntries,
			TTL:        c.ttlPolicy(),
		}), nil
	case BackendRedis:
		rc := c.Redis
		rc.TTL = c.ttlPolicy()
		return redis.NewRedisStore(rc)
	}
	return nil, fmt.Errorf("mirror: unknown backend %q", c.Backend)
}
