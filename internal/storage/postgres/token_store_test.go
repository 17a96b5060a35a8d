package postgres

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

func TestTokenStore_InsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTokenStore(pool)

	token := &domain.TokenRecord{
		Mint:          "TokenMint1",
		Owner:         "Owner1",
		Name:          "Launch Token",
		Symbol:        "LCH",
		MetadataURI:   "https://gateway.pinata.cloud/ipfs/QmMeta",
		ImageURI:      "https://gateway.pinata.cloud/ipfs/QmImage",
		Decimals:      9,
		InitialSupply: math.MaxUint64,
		Signature:     "CreateSig1",
		CreatedAt:     1700000000000,
	}

	require.NoError(t, store.Insert(ctx, token))

	retrieved, err := store.GetByMint(ctx, "TokenMint1")
	require.NoError(t, err)

	assert.Equal(t, token, retrieved)
}

func TestTokenStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	token := insertTestToken(t, ctx, pool, "DupMint", "Owner1", 1700000000000)

	err := NewTokenStore(pool).Insert(ctx, token)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenStore_GetByMintNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewTokenStore(pool).GetByMint(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_ListByOwner(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	insertTestToken(t, ctx, pool, "MintLate", "Alice", 1700000002000)
	insertTestToken(t, ctx, pool, "MintEarly", "Alice", 1700000001000)
	insertTestToken(t, ctx, pool, "MintBob", "Bob", 1700000001500)

	tokens, err := NewTokenStore(pool).ListByOwner(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "MintEarly", tokens[0].Mint)
	assert.Equal(t, "MintLate", tokens[1].Mint)
	assert.Equal(t, uint8(6), tokens[0].Decimals)

	none, err := NewTokenStore(pool).ListByOwner(ctx, "Carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}
