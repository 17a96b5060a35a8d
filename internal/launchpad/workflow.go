package launchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-launchpad/internal/domain"
)

var errInvalidTransition = errors.New("invalid workflow transition")

// workflow tracks one create or mint invocation through its states and
// publishes the terminal outcome.
type workflow struct {
	s       *Service
	id      string
	kind    domain.WorkflowKind
	state   domain.WorkflowState
	owner   string
	mint    string
	started time.Time
	entered time.Time
}

func (s *Service) begin(kind domain.WorkflowKind, owner string) *workflow {
	now := s.now()
	return &workflow{
		s:       s,
		id:      s.newID(),
		kind:    kind,
		state:   domain.StateIdle,
		owner:   owner,
		started: now,
		entered: now,
	}
}

// resume rebuilds a server-mode workflow from its pending transaction.
func (s *Service) resume(p *domain.PendingTransaction) *workflow {
	return &workflow{
		s:       s,
		id:      p.ID,
		kind:    p.Kind,
		state:   p.State,
		owner:   p.Owner,
		mint:    p.Mint,
		started: time.UnixMilli(p.StartedAt),
		entered: s.now(),
	}
}

func (w *workflow) advance(to domain.WorkflowState) error {
	if !domain.CanTransition(w.state, to) {
		return fmt.Errorf("%w: %s -> %s", errInvalidTransition, w.state, to)
	}
	now := w.s.now()
	w.s.metrics.RecordStage(w.kind.String(), w.state.String(), now.Sub(w.entered))
	w.state = to
	w.entered = now
	return nil
}

// fail publishes a failed event and returns err unchanged.
func (w *workflow) fail(ctx context.Context, err error) error {
	failedAt := w.state
	if w.state.IsTerminal() {
		return err
	}
	w.state = domain.StateFailed
	w.s.logger.Printf("%s workflow %s failed at %s: %v", w.kind, w.id, failedAt, err)
	w.publish(ctx, &domain.WorkflowEvent{
		State:    domain.StateFailed,
		FailedAt: failedAt,
		Error:    err.Error(),
	}, err)
	return err
}

// confirm publishes a confirmed event.
func (w *workflow) confirm(ctx context.Context, signature string) error {
	if err := w.advance(domain.StateConfirmed); err != nil {
		return err
	}
	w.publish(ctx, &domain.WorkflowEvent{
		State:     domain.StateConfirmed,
		Signature: signature,
	}, nil)
	return nil
}

func (w *workflow) publish(ctx context.Context, e *domain.WorkflowEvent, cause error) {
	now := w.s.now()
	e.ID = w.id
	e.Kind = w.kind
	e.Mint = w.mint
	e.Owner = w.owner
	e.DurationMs = now.Sub(w.started).Milliseconds()
	e.Timestamp = now.UnixMilli()

	var submitErr *SubmitError
	if errors.As(cause, &submitErr) && e.Signature == "" {
		e.Signature = submitErr.Signature
	}

	w.s.metrics.RecordWorkflow(w.kind.String(), e.State.String(), now.Sub(w.started))

	// The outcome already happened on chain; a lost analytics row is only logged.
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	err := w.s.events.Insert(ctx, e)
	w.s.metrics.RecordDBQuery("workflow_events", "insert", time.Since(start), err)
	if err != nil {
		w.s.logger.Printf("record %s event %s: %v", w.kind, w.id, err)
	}
}
