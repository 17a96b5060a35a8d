package solana

import "context"

// RPCClient defines the Solana RPC HTTP calls the launchpad workflows make.
type RPCClient interface {
	// GetAccountInfo retrieves account info by public key.
	// Returns nil, nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetMinimumBalanceForRentExemption returns lamports needed to keep dataLen bytes rent exempt.
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)

	// GetLatestBlockhash returns the most recent blockhash at the given commitment.
	GetLatestBlockhash(ctx context.Context, commitment Commitment) (*LatestBlockhash, error)

	// SendTransaction submits a base64 encoded signed transaction. It is never retried.
	SendTransaction(ctx context.Context, encoded string, opts *SendOpts) (string, error)

	// GetSignatureStatuses returns one status per signature, nil for unknown signatures.
	GetSignatureStatuses(ctx context.Context, signatures ...string) ([]*SignatureStatus, error)
}
