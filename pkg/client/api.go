// Package client talks to the remote accounts REST API.
package client

import (
	"context"

	"bank-admin/pkg/account"
)

// AccountsAPI is the set of calls the front ends make against the
// accounts endpoint. Client implements it directly; resilience and
// mirror wrap it.
type AccountsAPI interface {
	// Ping reports whether the backend answered at all. Any HTTP
	// response counts as reachable.
	Ping(ctx context.Context) error

	// List returns every account.
	List(ctx context.Context) ([]account.Account, error)

	// Get returns one account by id.
	Get(ctx context.Context, id int64) (*account.Account, error)

	// Create creates an account and returns it as stored.
	Create(ctx context.Context, req account.CreateRequest) (*account.Account, error)

	// Update replaces owner metadata and returns the account as stored.
	Update(ctx context.Context, id int64, req account.UpdateRequest) (*account.Account, error)

	// Delete removes an account.
	Delete(ctx context.Context, id int64) error
}

// Operation names used in errors, logs and metrics.
const (
	OpPing   = "ping"
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)
