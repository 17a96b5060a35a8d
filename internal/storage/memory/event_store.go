package memory

import (
	"context"
	"sort"
	"sync"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events []*domain.WorkflowEvent
	ids    map[string]struct{}
}

// NewEventStore creates a new in-memory workflow event store.
func NewEventStore() *EventStore {
	return &EventStore{
		ids: make(map[string]struct{}),
	}
}

// Insert appends an event. Returns ErrDuplicateKey if id already exists.
func (s *EventStore) Insert(_ context.Context, e *domain.WorkflowEvent) error {
	if e == nil || e.ID == "" || !e.Kind.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.ID]; exists {
		return storage.ErrDuplicateKey
	}

	eventCopy := *e
	s.events = append(s.events, &eventCopy)
	s.ids[e.ID] = struct{}{}
	return nil
}

// ListByMint retrieves all events for a mint, ordered by timestamp ASC.
func (s *EventStore) ListByMint(_ context.Context, mint string) ([]*domain.WorkflowEvent, error) {
	return s.filter(func(e *domain.WorkflowEvent) bool {
		return e.Mint == mint
	}), nil
}

// ListByTimeRange retrieves events within [start, end] (inclusive), ordered by timestamp ASC.
func (s *EventStore) ListByTimeRange(_ context.Context, start, end int64) ([]*domain.WorkflowEvent, error) {
	return s.filter(func(e *domain.WorkflowEvent) bool {
		return e.Timestamp >= start && e.Timestamp <= end
	}), nil
}

// All returns every stored event in insertion order.
func (s *EventStore) All() []*domain.WorkflowEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WorkflowEvent, 0, len(s.events))
	for _, e := range s.events {
		eventCopy := *e
		result = append(result, &eventCopy)
	}
	return result
}

func (s *EventStore) filter(match func(*domain.WorkflowEvent) bool) []*domain.WorkflowEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WorkflowEvent
	for _, e := range s.events {
		if match(e) {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result
}

var _ storage.EventStore = (*EventStore)(nil)
