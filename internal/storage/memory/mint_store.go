package memory

import (
	"context"
	"sort"
	"sync"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

// MintStore is an in-memory implementation of storage.MintStore.
type MintStore struct {
	mu          sync.RWMutex
	bySignature map[string]*domain.MintRecord
}

// NewMintStore creates a new in-memory mint store.
func NewMintStore() *MintStore {
	return &MintStore{
		bySignature: make(map[string]*domain.MintRecord),
	}
}

// Insert adds a new mint record. Returns ErrDuplicateKey if signature already exists.
func (s *MintStore) Insert(_ context.Context, m *domain.MintRecord) error {
	if m == nil || m.Signature == "" || m.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySignature[m.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	mintCopy := *m
	s.bySignature[m.Signature] = &mintCopy
	return nil
}

// ListByMint retrieves all mint records for a token, ordered by created_at ASC.
func (s *MintStore) ListByMint(_ context.Context, mint string) ([]*domain.MintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MintRecord
	for _, m := range s.bySignature {
		if m.Mint == mint {
			mintCopy := *m
			result = append(result, &mintCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].Signature < result[j].Signature
	})
	return result, nil
}

var _ storage.MintStore = (*MintStore)(nil)
