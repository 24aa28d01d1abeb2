package mock

import (
	"context"
	"sync/atomic"

	"bank-admin/pkg/account"
)

// API is a mock implementation of client.AccountsAPI for testing.
// It allows injecting custom behavior for each method and tracks call counts.
type API struct {
	// Function hooks - set these to customize behavior
	PingFunc   func(ctx context.Context) error
	ListFunc   func(ctx context.Context) ([]account.Account, error)
	GetFunc    func(ctx context.Context, id int64) (*account.Account, error)
	CreateFunc func(ctx context.Context, req account.CreateRequest) (*account.Account, error)
	UpdateFunc func(ctx context.Context, id int64, req account.UpdateRequest) (*account.Account, error)
	DeleteFunc func(ctx context.Context, id int64) error

	// Call tracking (must use atomic operations for race-free access)
	pingCalls   int64
	listCalls   int64
	getCalls    int64
	createCalls int64
	updateCalls int64
	deleteCalls int64
}

// Ping implements AccountsAPI.Ping with optional custom behavior.
func (m *API) Ping(ctx context.Context) error {
	atomic.AddInt64(&m.pingCalls, 1)
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// List implements AccountsAPI.List with optional custom behavior.
func (m *API) List(ctx context.Context) ([]account.Account, error) {
	atomic.AddInt64(&m.listCalls, 1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []account.Account{}, nil
}

// Get implements AccountsAPI.Get with optional custom behavior.
func (m *API) Get(ctx context.Context, id int64) (*account.Account, error) {
	atomic.AddInt64(&m.getCalls, 1)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &account.Account{ID: id}, nil
}

// Create implements AccountsAPI.Create with optional custom behavior.
func (m *API) Create(ctx context.Context, req account.CreateRequest) (*account.Account, error) {
	atomic.AddInt64(&m.createCalls, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return &account.Account{ID: 1, OwnerName: req.OwnerName, Email: req.Email, Balance: req.InitialDeposit}, nil
}

// Update implements AccountsAPI.Update with optional custom behavior.
func (m *API) Update(ctx context.Context, id int64, req account.UpdateRequest) (*account.Account, error) {
	atomic.AddInt64(&m.updateCalls, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return &account.Account{ID: id, OwnerName: req.OwnerName, Email: req.Email}, nil
}

// Delete implements AccountsAPI.Delete with optional custom behavior.
func (m *API) Delete(ctx context.Context, id int64) error {
	atomic.AddInt64(&m.deleteCalls, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// PingCalls returns the number of Ping calls (thread-safe).
func (m *API) PingCalls() int {
	return int(atomic.LoadInt64(&m.pingCalls))
}

// ListCalls returns the number of List calls (thread-safe).
func (m *API) ListCalls() int {
	return int(atomic.LoadInt64(&m.listCalls))
}

// GetCalls returns the number of Get calls (thread-safe).
func (m *API) GetCalls() int {
	return int(atomic.LoadInt64(&m.getCalls))
}

// CreateCalls returns the number of Create calls (thread-safe).
func (m *API) CreateCalls() int {
	return int(atomic.LoadInt64(&m.createCalls))
}

// UpdateCalls returns the number of Update calls (thread-safe).
func (m *API) UpdateCalls() int {
	return int(atomic.LoadInt64(&m.updateCalls))
}

// DeleteCalls returns the number of Delete calls (thread-safe).
func (m *API) DeleteCalls() int {
	return int(atomic.LoadInt64(&m.deleteCalls))
}
