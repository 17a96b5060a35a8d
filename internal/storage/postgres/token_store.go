package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	mint, owner, name, symbol, description, metadata_uri, image_uri,
	decimals, initial_supply::text, signature, created_at
`

// Insert adds a new token. Returns ErrDuplicateKey if mint exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.TokenRecord) error {
	if t == nil || t.Mint == "" || t.Owner == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tokens (
			mint, owner, name, symbol, description, metadata_uri, image_uri,
			decimals, initial_supply, signature, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		t.Mint,
		t.Owner,
		t.Name,
		t.Symbol,
		t.Description,
		t.MetadataURI,
		t.ImageURI,
		int16(t.Decimals),
		formatU64(t.InitialSupply),
		t.Signature,
		t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(ctx context.Context, mint string) (*domain.TokenRecord, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE mint = $1`

	t, err := scanToken(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by mint: %w", err)
	}
	return t, nil
}

// ListByOwner retrieves all tokens created by owner, ordered by created_at ASC.
func (s *TokenStore) ListByOwner(ctx context.Context, owner string) ([]*domain.TokenRecord, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE owner = $1 ORDER BY created_at ASC, mint ASC`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("query tokens by owner: %w", err)
	}
	defer rows.Close()

	var result []*domain.TokenRecord
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}
	return result, nil
}

func scanToken(row pgx.Row) (*domain.TokenRecord, error) {
	var t domain.TokenRecord
	var decimals int16
	var initialSupply string

	err := row.Scan(
		&t.Mint,
		&t.Owner,
		&t.Name,
		&t.Symbol,
		&t.Description,
		&t.MetadataURI,
		&t.ImageURI,
		&decimals,
		&initialSupply,
		&t.Signature,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Decimals = uint8(decimals)
	if t.InitialSupply, err = parseU64(initialSupply); err != nil {
		return nil, err
	}
	return &t, nil
}
