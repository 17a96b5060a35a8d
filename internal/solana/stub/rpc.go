package stub

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"sync"

	"github.com/mr-tron/base58"

	"token-launchpad/internal/solana"
)

// DefaultBlockhash is returned by GetLatestBlockhash unless overridden.
var DefaultBlockhash = base58.Encode(make([]byte, 32))

// RPCClient implements solana.RPCClient in memory for testing.
// Sent transactions are recorded and confirm on the next status query.
type RPCClient struct {
	mu sync.Mutex

	Accounts  map[string]*solana.AccountInfo
	Blockhash string
	// LamportsPerByte scales the rent exemption answer.
	LamportsPerByte uint64
	// SendErr, when set, fails every SendTransaction.
	SendErr error
	// TxErr, when set, is reported as the transaction error of every sent tx.
	TxErr interface{}
	// Unconfirmed keeps sent transactions out of getSignatureStatuses.
	Unconfirmed bool

	Sent     []string // base64 transactions in send order
	statuses map[string]*solana.SignatureStatus
	calls    map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts:        make(map[string]*solana.AccountInfo),
		Blockhash:       DefaultBlockhash,
		LamportsPerByte: 6960,
		statuses:        make(map[string]*solana.SignatureStatus),
		calls:           make(map[string]int),
	}
}

// GetAccountInfo returns the stored account or nil.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["getAccountInfo"]++
	return c.Accounts[pubkey], nil
}

// GetMinimumBalanceForRentExemption returns (128 + dataLen) * LamportsPerByte.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, dataLen uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["getMinimumBalanceForRentExemption"]++
	return (128 + dataLen) * c.LamportsPerByte, nil
}

// GetLatestBlockhash returns Blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context, _ solana.Commitment) (*solana.LatestBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["getLatestBlockhash"]++
	return &solana.LatestBlockhash{Blockhash: c.Blockhash, LastValidBlockHeight: 150}, nil
}

// SendTransaction records the transaction and returns a signature.
// The signature is the first signature of the transaction if it has one.
func (c *RPCClient) SendTransaction(_ context.Context, encoded string, _ *solana.SendOpts) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["sendTransaction"]++
	if c.SendErr != nil {
		return "", c.SendErr
	}

	sig := firstSignature(encoded)
	c.Sent = append(c.Sent, encoded)
	if !c.Unconfirmed {
		c.statuses[sig] = &solana.SignatureStatus{
			Slot:               int64(len(c.Sent)),
			Err:                c.TxErr,
			ConfirmationStatus: solana.CommitmentConfirmed,
		}
	}
	return sig, nil
}

// GetSignatureStatuses returns statuses of sent transactions.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures ...string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["getSignatureStatuses"]++
	out := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		out[i] = c.statuses[sig]
	}
	return out, nil
}

// AddAccount stores an account so GetAccountInfo finds it.
func (c *RPCClient) AddAccount(pubkey string, info *solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pubkey] = info
}

// Calls returns how many times method was called.
func (c *RPCClient) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (c *RPCClient) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

// LastSent returns the most recent sent transaction, decoded from base64.
func (c *RPCClient) LastSent() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return nil
	}
	b, _ := base64.StdEncoding.DecodeString(c.Sent[len(c.Sent)-1])
	return b
}

// firstSignature reads the fee payer signature from a wire transaction.
// Falls back to a hash of the payload so unsigned input still gets a stable id.
func firstSignature(encoded string) string {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err == nil && len(raw) >= 65 && raw[0] > 0 && raw[0] < 0x80 {
		return base58.Encode(raw[1:65])
	}
	sum := sha256.Sum256([]byte(encoded))
	return base58.Encode(append(sum[:], sum[:]...))
}

var _ solana.RPCClient = (*RPCClient)(nil)
