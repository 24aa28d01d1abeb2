// Package cache holds the byte stores behind the account mirror and the
// helpers shared by them: key building, TTL policy and the not-found memo.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value store with per-entry TTL.
// Values are opaque; the mirror stores JSON.
type Store interface {
	// Get returns the stored bytes, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl. A ttl of 0 uses the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Name identifies the store in logs and /status ("memory", "redis").
	Name() string

	// Close releases any resources held by the store.
	Close() error
}
