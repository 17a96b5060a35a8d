package memory

import (
	"context"
	"sync"
	"time"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

type pendingEntry struct {
	tx        domain.PendingTransaction
	expiresAt time.Time
}

// PendingStore is an in-memory implementation of storage.PendingStore.
// Expired entries are dropped on access and swept on every Put.
type PendingStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time
}

// NewPendingStore creates a new in-memory pending transaction store.
func NewPendingStore() *PendingStore {
	return &PendingStore{
		entries: make(map[string]pendingEntry),
		now:     time.Now,
	}
}

// NewPendingStoreWithClock creates a store that reads time from now.
func NewPendingStoreWithClock(now func() time.Time) *PendingStore {
	s := NewPendingStore()
	s.now = now
	return s
}

// Put stores a pending transaction for ttl. Returns ErrDuplicateKey if a live entry exists.
func (s *PendingStore) Put(_ context.Context, p *domain.PendingTransaction, ttl time.Duration) error {
	if p == nil || p.ID == "" || ttl <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if _, exists := s.entries[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.entries[p.ID] = pendingEntry{tx: clonePending(p), expiresAt: now.Add(ttl)}
	return nil
}

// Get returns a live pending transaction. Returns ErrNotFound if missing or expired.
func (s *PendingStore) Get(_ context.Context, id string) (*domain.PendingTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	txCopy := clonePending(&e.tx)
	return &txCopy, nil
}

// Take returns and removes a live pending transaction. Returns ErrNotFound if missing or expired.
func (s *PendingStore) Take(_ context.Context, id string) (*domain.PendingTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.entries, id)
	txCopy := clonePending(&e.tx)
	return &txCopy, nil
}

// live must be called with mu held.
func (s *PendingStore) live(id string) (pendingEntry, bool) {
	e, exists := s.entries[id]
	if !exists {
		return pendingEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return pendingEntry{}, false
	}
	return e, true
}

// sweep drops every expired entry. Must be called with mu held.
func (s *PendingStore) sweep(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ storage.PendingStore = (*PendingStore)(nil)

func clonePending(p *domain.PendingTransaction) domain.PendingTransaction {
	c := *p
	if p.Token != nil {
		token := *p.Token
		c.Token = &token
	}
	return c
}
