// Package memory is an in-process cache.Store with TTL expiry and a
// least-recently-used bound.
package memory

import (
	"context"
	"sync"
	"time"

	"bank-admin/pkg/cache"
)

// MemoryStore is an in-memory implementation of cache.Store.
// It provides thread-safe operations, automatic TTL expiration, and optional LRU eviction.
type MemoryStore struct {
	// data stores the entries
	data map[string]*entry

	// mu protects concurrent access to data
	mu sync.Mutex

	config MemoryStoreConfig
	now    func() time.Time

	// cleanupTicker controls the background cleanup interval
	cleanupTicker *time.Ticker

	// stopCleanup is used to signal cleanup goroutine to stop
	stopCleanup chan struct{}

	// wg waits for cleanup goroutine to finish
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// entry is a stored value with metadata for LRU and TTL
type entry struct {
	value      []byte
	expiresAt  time.Time
	accessedAt time.Time
}

// MemoryStoreConfig holds configuration for the memory store
type MemoryStoreConfig struct {
	// Name is the store identifier
	Name string

	// MaxEntries is the maximum number of entries (0 = unlimited)
	MaxEntries int

	// TTL bounds entry lifetimes
	TTL cache.TTLPolicy

	// CleanupInterval is how often to check for expired entries
	CleanupInterval time.Duration
}

// NewMemoryStore creates a new in-memory store with the given configuration.
// It starts a background goroutine for TTL cleanup.
func NewMemoryStore(config MemoryStoreConfig) *MemoryStore {
	if config.Name == "" {
		config.Name = "memory"
	}
	if config.TTL.DefaultTTL == 0 {
		config.TTL.DefaultTTL = time.Minute
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}

	s := &MemoryStore{
		data:          make(map[string]*entry),
		config:        config,
		now:           time.Now,
		stopCleanup:   make(chan struct{}),
		cleanupTicker: time.NewTicker(config.CleanupInterval),
	}

	s.wg.Add(1)
	go s.cleanup()

	return s
}

// Get implements cache.Store.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[key]
	if !exists {
		return nil, cache.ErrKeyNotFound
	}

	now := s.now()
	if now.After(e.expiresAt) {
		delete(s.data, key)
		return nil, cache.ErrKeyNotFound
	}

	e.accessedAt = now

	// Callers must not be able to mutate the stored bytes
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set implements cache.Store. Enforces MaxEntries by evicting the least
// recently used entry.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}

	now := s.now()
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists && s.config.MaxEntries > 0 && len(s.data) >= s.config.MaxEntries {
		s.evictLRU()
	}

	s.data[key] = &entry{
		value:      stored,
		expiresAt:  now.Add(s.config.TTL.EffectiveTTL(ttl)),
		accessedAt: now,
	}

	return nil
}

// evictLRU removes the least recently used entry. Caller holds mu.
func (s *MemoryStore) evictLRU() {
	var lruKey string
	var lruTime time.Time

	for k, e := range s.data {
		if lruKey == "" || e.accessedAt.Before(lruTime) {
			lruKey = k
			lruTime = e.accessedAt
		}
	}

	if lruKey != "" {
		delete(s.data, lruKey)
	}
}

// Delete implements cache.Store.
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// Name returns the store name.
func (s *MemoryStore) Name() string {
	return s.config.Name
}

// Close stops the background cleanup goroutine and clears all data.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		s.cleanupTicker.Stop()
		close(s.stopCleanup)
		s.wg.Wait()

		s.mu.Lock()
		s.data = make(map[string]*entry)
		s.mu.Unlock()
	})
	return nil
}

// cleanup runs in a background goroutine to remove expired entries.
func (s *MemoryStore) cleanup() {
	defer s.wg.Done()

	for {
		select {
		case <-s.cleanupTicker.C:
			s.removeExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

// removeExpired removes all expired entries.
func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, key)
		}
	}
}

// Stats returns current store statistics.
func (s *MemoryStore) Stats() MemoryStoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := MemoryStoreStats{
		Size:     len(s.data),
		MaxSize:  s.config.MaxEntries,
		Capacity: s.config.MaxEntries,
	}

	if stats.Capacity == 0 {
		stats.Capacity = -1 // Unlimited
	}

	return stats
}

// MemoryStoreStats holds store statistics.
type MemoryStoreStats struct {
	Size     int // Current number of entries
	MaxSize  int // Maximum allowed entries (0 = unlimited)
	Capacity int // Effective capacity (-1 = unlimited)
}
