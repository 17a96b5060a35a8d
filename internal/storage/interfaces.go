package storage

import (
	"context"
	"time"

	"token-launchpad/internal/domain"
)

// TokenStore provides access to tokens storage.
// A token row is what makes the mint workflow reachable for a mint address.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if mint exists.
	Insert(ctx context.Context, t *domain.TokenRecord) error

	// GetByMint retrieves a token by its mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.TokenRecord, error)

	// ListByOwner retrieves all tokens created by a wallet, ordered by created_at ASC.
	ListByOwner(ctx context.Context, owner string) ([]*domain.TokenRecord, error)
}

// MintStore provides access to mints storage.
type MintStore interface {
	// Insert adds a new mint record. Returns ErrDuplicateKey if signature exists.
	Insert(ctx context.Context, m *domain.MintRecord) error

	// ListByMint retrieves all mint records for a token, ordered by created_at ASC.
	ListByMint(ctx context.Context, mint string) ([]*domain.MintRecord, error)
}

// EventStore provides access to workflow_events storage.
type EventStore interface {
	// Insert appends a terminal workflow outcome. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, e *domain.WorkflowEvent) error

	// ListByMint retrieves all events for a mint, ordered by timestamp ASC.
	ListByMint(ctx context.Context, mint string) ([]*domain.WorkflowEvent, error)

	// ListByTimeRange retrieves events within [start, end] (inclusive), ordered by timestamp ASC.
	ListByTimeRange(ctx context.Context, start, end int64) ([]*domain.WorkflowEvent, error)
}

// PendingStore holds partially-signed transactions between prepare and complete.
// Entries expire after their TTL.
type PendingStore interface {
	// Put stores a pending transaction. Returns ErrDuplicateKey if id exists.
	Put(ctx context.Context, p *domain.PendingTransaction, ttl time.Duration) error

	// Get returns a pending transaction without removing it. Returns ErrNotFound if
	// it does not exist or has expired.
	Get(ctx context.Context, id string) (*domain.PendingTransaction, error)

	// Take atomically returns and removes a pending transaction. At most one caller
	// receives a given entry; the rest get ErrNotFound.
	Take(ctx context.Context, id string) (*domain.PendingTransaction, error)
}
