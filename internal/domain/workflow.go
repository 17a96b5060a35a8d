package domain

// WorkflowKind identifies which pipeline produced an event.
type WorkflowKind string

const (
	WorkflowCreate WorkflowKind = "create"
	WorkflowMint   WorkflowKind = "mint"
)

// String returns the string representation of WorkflowKind.
func (k WorkflowKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a valid value.
func (k WorkflowKind) IsValid() bool {
	return k == WorkflowCreate || k == WorkflowMint
}

// WorkflowState is the stage a single workflow invocation is in.
type WorkflowState string

const (
	StateIdle              WorkflowState = "idle"
	StateUploading         WorkflowState = "uploading"
	StateAssembling        WorkflowState = "assembling"
	StateAwaitingSignature WorkflowState = "awaiting_signature"
	StateSubmitting        WorkflowState = "submitting"
	StateConfirmed         WorkflowState = "confirmed"
	StateFailed            WorkflowState = "failed"
)

// String returns the string representation of WorkflowState.
func (s WorkflowState) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed.
func (s WorkflowState) IsTerminal() bool {
	return s == StateConfirmed || s == StateFailed
}

var transitions = map[WorkflowState][]WorkflowState{
	StateIdle:              {StateUploading, StateAssembling},
	StateUploading:         {StateAssembling},
	StateAssembling:        {StateAwaitingSignature},
	StateAwaitingSignature: {StateSubmitting},
	StateSubmitting:        {StateConfirmed},
}

// CanTransition reports whether a workflow may move from one state to another.
// Any non-terminal state may fail.
func CanTransition(from, to WorkflowState) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// WorkflowEvent is the terminal outcome of one workflow invocation.
// Corresponds to workflow_events table in ClickHouse.
type WorkflowEvent struct {
	ID         string // workflow id (uuid)
	Kind       WorkflowKind
	State      WorkflowState // confirmed | failed
	FailedAt   WorkflowState // stage that was active when the workflow failed
	Mint       string
	Owner      string
	Signature  string
	Error      string
	DurationMs int64
	Timestamp  int64 // Unix timestamp in milliseconds
}

// PendingTransaction is a partially-signed transaction waiting for the
// wallet's signature in server mode.
type PendingTransaction struct {
	ID    string        `json:"id"`
	Kind  WorkflowKind  `json:"kind"`
	State WorkflowState `json:"state"`
	Mint  string        `json:"mint"`
	Owner string        `json:"owner"`

	// Transaction is the base64 wire form, signed by every local signer.
	Transaction string `json:"transaction"`

	// Creation fields.
	Token *TokenRecord `json:"token,omitempty"`

	// Mint fields.
	TokenAccount   string `json:"token_account,omitempty"`
	Amount         string `json:"amount,omitempty"`
	RawAmount      uint64 `json:"raw_amount,omitempty"`
	CreatedAccount bool   `json:"created_account,omitempty"`

	StartedAt int64 `json:"started_at"` // ms
	ExpiresAt int64 `json:"expires_at"` // ms
}
