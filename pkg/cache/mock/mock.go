// Package mock provides a hook-based cache.Store for tests.
package mock

import (
	"context"
	"sync/atomic"
	"time"
)

// MockStore is a mock implementation of cache.Store for testing.
// It allows injecting custom behavior for each method and tracks call counts.
type MockStore struct {
	// Function hooks - set these to customize behavior
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, keys ...string) error
	NameFunc   func() string
	CloseFunc  func() error

	// Call tracking (must use atomic operations for race-free access)
	getCalls    int64
	setCalls    int64
	deleteCalls int64
	closeCalls  int64
}

// Get implements Store.Get with optional custom behavior.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt64(&m.getCalls, 1)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, nil
}

// Set implements Store.Set with optional custom behavior.
func (m *MockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	atomic.AddInt64(&m.setCalls, 1)
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return nil
}

// Delete implements Store.Delete with optional custom behavior.
func (m *MockStore) Delete(ctx context.Context, keys ...string) error {
	atomic.AddInt64(&m.deleteCalls, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keys...)
	}
	return nil
}

// Name implements Store.Name with optional custom behavior.
func (m *MockStore) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// Close implements Store.Close with optional custom behavior.
func (m *MockStore) Close() error {
	atomic.AddInt64(&m.closeCalls, 1)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// GetCalls returns the number of Get calls (thread-safe).
func (m *MockStore) GetCalls() int {
	return int(atomic.LoadInt64(&m.getCalls))
}

// SetCalls returns the number of Set calls (thread-safe).
func (m *MockStore) SetCalls() int {
	return int(atomic.LoadInt64(&m.setCalls))
}

// DeleteCalls returns the number of Delete calls (thread-safe).
func (m *MockStore) DeleteCalls() int {
	return int(atomic.LoadInt64(&m.deleteCalls))
}

// CloseCalls returns the number of Close calls (thread-safe).
func (m *MockStore) CloseCalls() int {
	return int(atomic.LoadInt64(&m.closeCalls))
}
