package wallet

import (
	"context"
	"fmt"
	"strings"

	solana "github.com/gagliardetto/solana-go"
)

// Keypair is a wallet whose private key lives in this process.
type Keypair struct {
	key solana.PrivateKey
}

// NewKeypair wraps an existing private key.
func NewKeypair(key solana.PrivateKey) *Keypair {
	return &Keypair{key: key}
}

// LoadKeypairFile reads a solana-keygen JSON keypair file.
func LoadKeypairFile(path string) (*Keypair, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return &Keypair{key: key}, nil
}

// ParseKeypair accepts a solana-keygen JSON array or a base58 private key.
func ParseKeypair(data []byte) (*Keypair, error) {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, "[") {
		key, err := solana.PrivateKeyFromSolanaKeygenFileBytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("parse keypair json: %w", err)
		}
		return &Keypair{key: key}, nil
	}

	key, err := solana.PrivateKeyFromBase58(s)
	if err != nil {
		return nil, fmt.Errorf("parse keypair base58: %w", err)
	}
	if _, err := solana.ValidatePrivateKey(key); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Keypair{key: key}, nil
}

// PublicKey returns the wallet address.
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.key.PublicKey()
}

// SignTransaction adds the keypair's signature, keeping signatures already present.
func (k *Keypair) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pub := k.key.PublicKey()
	if !tx.Message.IsSigner(pub) {
		return fmt.Errorf("wallet %s is not a required signer", pub)
	}

	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &k.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}

var _ Signer = (*Keypair)(nil)
