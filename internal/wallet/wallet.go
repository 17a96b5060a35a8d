// Package wallet defines the capabilities a connected wallet can offer and a
// local keypair implementation of them.
package wallet

import (
	"context"
	"errors"

	solana "github.com/gagliardetto/solana-go"
)

// ErrRejected is returned when the wallet owner declines to sign.
var ErrRejected = errors.New("signature request rejected")

// Wallet is a connected wallet with a known address.
type Wallet interface {
	PublicKey() solana.PublicKey
}

// Signer can add the wallet's signature to a transaction without sending it.
type Signer interface {
	Wallet
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Sender signs and submits a transaction in one step.
type Sender interface {
	Wallet
	SignAndSendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Connected reports whether w can be used at all.
func Connected(w Wallet) bool {
	if w == nil {
		return false
	}
	return !w.PublicKey().IsZero()
}

// AsSigner returns w as a Signer if it has that capability.
func AsSigner(w Wallet) (Signer, bool) {
	s, ok := w.(Signer)
	return s, ok
}

// AsSender returns w as a Sender if it has that capability.
func AsSender(w Wallet) (Sender, bool) {
	s, ok := w.(Sender)
	return s, ok
}

// PublicOnly is a wallet known only by its address. Server mode prepares
// transactions for such wallets and lets the owner sign elsewhere.
type PublicOnly solana.PublicKey

// PublicKey returns the address.
func (p PublicOnly) PublicKey() solana.PublicKey {
	return solana.PublicKey(p)
}
