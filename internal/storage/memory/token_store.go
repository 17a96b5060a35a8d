package memory

import (
	"context"
	"sort"
	"sync"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	byMint map[string]*domain.TokenRecord // keyed by mint (unique)
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byMint: make(map[string]*domain.TokenRecord),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if mint already exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.TokenRecord) error {
	if t == nil || t.Mint == "" || t.Owner == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byMint[t.Mint]; exists {
		return storage.ErrDuplicateKey
	}

	tokenCopy := *t
	s.byMint[t.Mint] = &tokenCopy
	return nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(_ context.Context, mint string) (*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// ListByOwner retrieves all tokens created by owner, ordered by created_at ASC.
func (s *TokenStore) ListByOwner(_ context.Context, owner string) ([]*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenRecord
	for _, t := range s.byMint {
		if t.Owner == owner {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].Mint < result[j].Mint
	})
	return result, nil
}

var _ storage.TokenStore = (*TokenStore)(nil)
