package clickhouse

import (
	"context"
	"fmt"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const eventColumns = `
	id, kind, state, failed_at, mint, owner, signature, error, duration_ms, timestamp_ms
`

// Insert appends a workflow event. MergeTree does not enforce uniqueness,
// so the id is checked before insert.
func (s *EventStore) Insert(ctx context.Context, e *domain.WorkflowEvent) error {
	if e == nil || e.ID == "" || !e.Kind.IsValid() {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO workflow_events (`+eventColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		e.ID, string(e.Kind), string(e.State), string(e.FailedAt),
		e.Mint, e.Owner, e.Signature, e.Error,
		uint64(max(e.DurationMs, 0)), uint64(max(e.Timestamp, 0)),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ListByMint retrieves all events for a mint, ordered by timestamp ASC.
func (s *EventStore) ListByMint(ctx context.Context, mint string) ([]*domain.WorkflowEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM workflow_events WHERE mint = ? ORDER BY timestamp_ms ASC, id ASC`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByTimeRange retrieves events within [start, end] (inclusive), ordered by timestamp ASC.
func (s *EventStore) ListByTimeRange(ctx context.Context, start, end int64) ([]*domain.WorkflowEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM workflow_events
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, id ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(max(start, 0)), uint64(max(end, 0)))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *EventStore) exists(ctx context.Context, id string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM workflow_events WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanEvents(rows chRows) ([]*domain.WorkflowEvent, error) {
	var events []*domain.WorkflowEvent

	for rows.Next() {
		var e domain.WorkflowEvent
		var kind, state, failedAt string
		var durationMs, timestampMs uint64

		err := rows.Scan(
			&e.ID, &kind, &state, &failedAt,
			&e.Mint, &e.Owner, &e.Signature, &e.Error,
			&durationMs, &timestampMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan workflow event row: %w", err)
		}

		e.Kind = domain.WorkflowKind(kind)
		e.State = domain.WorkflowState(state)
		e.FailedAt = domain.WorkflowState(failedAt)
		e.DurationMs = int64(durationMs)
		e.Timestamp = int64(timestampMs)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow event rows: %w", err)
	}
	return events, nil
}
