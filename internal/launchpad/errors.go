package launchpad

import (
	"errors"
	"fmt"

	"token-launchpad/internal/domain"
)

// Precondition errors. They are returned before any network call.
var (
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDecimals    = errors.New("invalid decimals")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrWalletCapability   = errors.New("wallet lacks required capability")
	ErrUnknownToken       = errors.New("unknown token")
)

// Server-mode errors.
var (
	// ErrSignatureRejected is returned when a wallet-signed transaction does not
	// carry the prepared message or a valid signature from every signer.
	ErrSignatureRejected = errors.New("signed transaction rejected")

	// ErrPendingNotFound is returned for expired or already completed transactions.
	ErrPendingNotFound = errors.New("pending transaction not found")
)

// ErrTransactionFailed is returned when the cluster reports an execution error.
var ErrTransactionFailed = errors.New("transaction failed")

// UploadError reports a failed image or metadata upload.
type UploadError struct {
	Artifact string // "image" or "metadata"
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Artifact, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// SubmitError reports a failure while signing, sending or confirming.
// Signature is set once the transaction has been sent.
type SubmitError struct {
	Stage     domain.WorkflowState
	Signature string
	Err       error
}

func (e *SubmitError) Error() string {
	if e.Signature != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.Signature, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}
