package cache

import (
	"sync"
	"time"
)

// NegativeEntry represents a remembered "not found" answer.
type NegativeEntry struct {
	Key       string
	CachedAt  time.Time
	ExpiresAt time.Time
}

// NegativeCache remembers keys whose lookup answered "not found" for a
// short TTL so repeated lookups of a missing account skip the backend.
type NegativeCache struct {
	entries     map[string]NegativeEntry
	ttl         time.Duration
	now         func() time.Time
	mu          sync.RWMutex
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	closeOnce   sync.Once
}

// NewNegativeCache creates a negative cache. ttl determines how long a
// "not found" answer is remembered.
func NewNegativeCache(ttl time.Duration) *NegativeCache {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	nc := &NegativeCache{
		entries:     make(map[string]NegativeEntry),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}

	go nc.cleanup()

	return nc
}

// Has reports whether key is remembered as missing and not yet expired.
func (nc *NegativeCache) Has(key string) bool {
	nc.mu.RLock()
	defer nc.mu.RUnlock()

	entry, exists := nc.entries[key]
	if !exists {
		return false
	}
	return !nc.now().After(entry.ExpiresAt)
}

// Add remembers key as missing.
func (nc *NegativeCache) Add(key string) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	now := nc.now()
	nc.entries[key] = NegativeEntry{
		Key:       key,
		CachedAt:  now,
		ExpiresAt: now.Add(nc.ttl),
	}
}

// Remove forgets key.
func (nc *NegativeCache) Remove(keys ...string) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	for _, key := range keys {
		delete(nc.entries, key)
	}
}

// Clear forgets every key.
func (nc *NegativeCache) Clear() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.entries = make(map[string]NegativeEntry)
}

// Close stops the cleanup goroutine.
func (nc *NegativeCache) Close() error {
	nc.closeOnce.Do(func() {
		close(nc.stopCleanup)
		<-nc.cleanupDone
	})
	return nil
}

// cleanup periodically removes expired entries.
func (nc *NegativeCache) cleanup() {
	defer close(nc.cleanupDone)

	ticker := time.NewTicker(nc.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			nc.removeExpired()
		case <-nc.stopCleanup:
			return
		}
	}
}

func (nc *NegativeCache) removeExpired() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	now := nc.now()
	for key, entry := range nc.entries {
		if now.After(entry.ExpiresAt) {
			delete(nc.entries, key)
		}
	}
}

// Stats returns statistics about the negative cache.
func (nc *NegativeCache) Stats() NegativeCacheStats {
	nc.mu.RLock()
	defer nc.mu.RUnlock()

	return NegativeCacheStats{
		Count: len(nc.entries),
		TTL:   nc.ttl,
	}
}

// NegativeCacheStats holds statistics about negative caching.
type NegativeCacheStats struct {
	Count int
	TTL   time.Duration
}
