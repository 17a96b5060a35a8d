package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program addresses.
const (
	SystemProgramID          = "11111111111111111111111111111111"
	Token2022ProgramID       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

// ErrNoProgramAddress is returned when every bump seed lands on the curve.
var ErrNoProgramAddress = errors.New("unable to find a viable program address")

// FindProgramAddress derives a Program Derived Address and its bump seed.
// Bumps are tried from 255 down; the first hash off the ed25519 curve wins.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	if len(seeds) >= maxSeeds {
		return "", 0, fmt.Errorf("too many seeds: %d", len(seeds))
	}
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return "", 0, fmt.Errorf("seed %d too long: %d bytes", i, len(seed))
		}
	}

	program, err := decodePubkey(programID)
	if err != nil {
		return "", 0, fmt.Errorf("program id: %w", err)
	}

	for bump := byte(255); bump > 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{bump})
		h.Write(program)
		h.Write([]byte(pdaMarker))
		hash := h.Sum(nil)

		if !isOnCurve(hash) {
			return base58.Encode(hash), bump, nil
		}
	}

	return "", 0, ErrNoProgramAddress
}

// AssociatedTokenAddress derives the canonical token account of owner for mint
// under the given token program.
func AssociatedTokenAddress(owner, mint, tokenProgramID string) (string, error) {
	ownerKey, err := decodePubkey(owner)
	if err != nil {
		return "", fmt.Errorf("owner: %w", err)
	}
	mintKey, err := decodePubkey(mint)
	if err != nil {
		return "", fmt.Errorf("mint: %w", err)
	}
	programKey, err := decodePubkey(tokenProgramID)
	if err != nil {
		return "", fmt.Errorf("token program: %w", err)
	}

	addr, _, err := FindProgramAddress([][]byte{ownerKey, programKey, mintKey}, AssociatedTokenProgramID)
	if err != nil {
		return "", err
	}
	return addr, nil
}

// IsOnCurve reports whether a base58 address is a valid ed25519 point.
// Program derived addresses never are.
func IsOnCurve(address string) bool {
	b, err := decodePubkey(address)
	if err != nil {
		return false
	}
	return isOnCurve(b)
}

func decodePubkey(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58 %q: %w", s, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid public key length %d for %q", len(b), s)
	}
	return b, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
