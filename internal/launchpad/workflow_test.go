package launchpad

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-launchpad/internal/domain"
)

func TestWorkflow_Transitions(t *testing.T) {
	h := newHarness(t)
	wf := h.svc.begin(domain.WorkflowMint, "owner")

	require.NoError(t, wf.advance(domain.StateAssembling))
	require.ErrorIs(t, wf.advance(domain.StateConfirmed), errInvalidTransition)
	require.NoError(t, wf.advance(domain.StateAwaitingSignature))
	require.NoError(t, wf.advance(domain.StateSubmitting))
	require.NoError(t, wf.confirm(context.Background(), "sig"))

	events := h.events.All()
	require.Len(t, events, 1)
	assert.Equal(t, "sig", events[0].Signature)
}

func TestWorkflow_FailOnce(t *testing.T) {
	h := newHarness(t)
	wf := h.svc.begin(domain.WorkflowCreate, "owner")
	require.NoError(t, wf.advance(domain.StateUploading))

	h.clock.Advance(1500 * time.Millisecond)
	boom := errors.New("boom")
	assert.Equal(t, boom, wf.fail(context.Background(), boom))
	assert.Equal(t, boom, wf.fail(context.Background(), boom), "terminal workflows publish nothing more")

	events := h.events.All()
	require.Len(t, events, 1)
	assert.Equal(t, domain.StateFailed, events[0].State)
	assert.Equal(t, domain.StateUploading, events[0].FailedAt)
	assert.Equal(t, "boom", events[0].Error)
	assert.Equal(t, int64(1500), events[0].DurationMs)
	assert.Equal(t, "owner", events[0].Owner)
}

func TestWorkflow_FailCarriesSubmittedSignature(t *testing.T) {
	h := newHarness(t)
	wf := h.svc.begin(domain.WorkflowMint, "owner")
	require.NoError(t, wf.advance(domain.StateAssembling))

	_ = wf.fail(context.Background(), &SubmitError{Stage: domain.StateSubmitting, Signature: "5ig", Err: ErrTransactionFailed})

	events := h.events.All()
	require.Len(t, events, 1)
	assert.Equal(t, "5ig", events[0].Signature)
}
