package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

func TestEventStore_InsertAndListByMint(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(conn)

	created := &domain.WorkflowEvent{
		ID:         "evt-create",
		Kind:       domain.WorkflowCreate,
		State:      domain.StateConfirmed,
		Mint:       "MintA",
		Owner:      "OwnerA",
		Signature:  "SigCreate",
		DurationMs: 4200,
		Timestamp:  1700000001000,
	}
	failed := &domain.WorkflowEvent{
		ID:         "evt-mint",
		Kind:       domain.WorkflowMint,
		State:      domain.StateFailed,
		FailedAt:   domain.StateSubmitting,
		Mint:       "MintA",
		Owner:      "OwnerA",
		Error:      "submit transaction: blockhash not found",
		DurationMs: 900,
		Timestamp:  1700000002000,
	}

	require.NoError(t, store.Insert(ctx, failed))
	require.NoError(t, store.Insert(ctx, created))

	events, err := store.ListByMint(ctx, "MintA")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, created, events[0])
	assert.Equal(t, failed, events[1])
}

func TestEventStore_InsertDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(conn)

	e := &domain.WorkflowEvent{ID: "evt-dup", Kind: domain.WorkflowCreate, State: domain.StateConfirmed, Timestamp: 1}
	require.NoError(t, store.Insert(ctx, e))
	assert.ErrorIs(t, store.Insert(ctx, e), storage.ErrDuplicateKey)
}

func TestEventStore_ListByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(conn)

	for i, ts := range []int64{1000, 2000, 3000} {
		e := &domain.WorkflowEvent{
			ID:        []string{"a", "b", "c"}[i],
			Kind:      domain.WorkflowMint,
			State:     domain.StateConfirmed,
			Timestamp: ts,
		}
		require.NoError(t, store.Insert(ctx, e))
	}

	events, err := store.ListByTimeRange(ctx, 1500, 3000)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, "c", events[1].ID)
}
