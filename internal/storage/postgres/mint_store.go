package postgres

import (
	"context"
	"fmt"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

// MintStore implements storage.MintStore using PostgreSQL.
type MintStore struct {
	pool *Pool
}

// NewMintStore creates a new MintStore.
func NewMintStore(pool *Pool) *MintStore {
	return &MintStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MintStore = (*MintStore)(nil)

// Insert adds a new mint record. Returns ErrDuplicateKey if signature exists
// and ErrNotFound if the token is not recorded.
func (s *MintStore) Insert(ctx context.Context, m *domain.MintRecord) error {
	if m == nil || m.Signature == "" || m.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO mints (
			signature, mint, owner, token_account, amount, raw_amount,
			created_account, created_at
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		m.Signature,
		m.Mint,
		m.Owner,
		m.TokenAccount,
		m.Amount,
		formatU64(m.RawAmount),
		m.CreatedAccount,
		m.CreatedAt,
	)
	if err != nil {
		switch {
		case isDuplicateKeyError(err):
			return storage.ErrDuplicateKey
		case isForeignKeyError(err):
			return storage.ErrNotFound
		}
		return fmt.Errorf("insert mint: %w", err)
	}
	return nil
}

// ListByMint retrieves all mint records for a token, ordered by created_at ASC.
func (s *MintStore) ListByMint(ctx context.Context, mint string) ([]*domain.MintRecord, error) {
	query := `
		SELECT signature, mint, owner, token_account, amount, raw_amount::text,
			created_account, created_at
		FROM mints
		WHERE mint = $1
		ORDER BY created_at ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query mints by mint: %w", err)
	}
	defer rows.Close()

	var result []*domain.MintRecord
	for rows.Next() {
		var m domain.MintRecord
		var rawAmount string
		err := rows.Scan(
			&m.Signature,
			&m.Mint,
			&m.Owner,
			&m.TokenAccount,
			&m.Amount,
			&rawAmount,
			&m.CreatedAccount,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mint row: %w", err)
		}
		if m.RawAmount, err = parseU64(rawAmount); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mint rows: %w", err)
	}
	return result, nil
}
