// Package token2022 builds Token-2022 and token-metadata interface
// instructions for a mint that carries its own metadata.
package token2022

import (
	"crypto/sha256"

	solana "github.com/gagliardetto/solana-go"
)

// Program IDs.
var (
	ProgramID                = solana.Token2022ProgramID
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
)

// Account layout sizes.
const (
	// baseMintLen is the legacy SPL mint layout.
	baseMintLen = 82
	// baseAccountLen is the token account layout; extended mints are padded to it
	// so mints and accounts can be told apart by length.
	baseAccountLen = 165
	accountTypeLen = 1
	tlvHeaderLen   = 4 // u16 type + u16 length
	pubkeyLen      = 32

	metadataPointerLen = 2 * pubkeyLen // authority + metadata address

	// MintLenWithMetadataPointer is the space allocated for a mint with the
	// MetadataPointer extension. Metadata itself is appended by the program
	// during InitializeTokenMetadata, paid for by the rent funded up front.
	MintLenWithMetadataPointer = baseAccountLen + accountTypeLen + tlvHeaderLen + metadataPointerLen
)

// Token-2022 instruction tags.
const (
	instructionInitializeMint       uint8 = 0
	instructionMintTo               uint8 = 7
	instructionMetadataPointer      uint8 = 39
	metadataPointerInitialize       uint8 = 0
	associatedTokenCreateDataLength       = 0
)

// initializeMetadataDiscriminator is the token-metadata interface
// "initialize_account" instruction discriminator.
var initializeMetadataDiscriminator = discriminator("spl_token_metadata_interface:initialize_account")

func discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte(name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// MetadataLen returns the TLV size of a TokenMetadata entry with no
// additional key/value pairs.
func MetadataLen(name, symbol, uri string) uint64 {
	packed := pubkeyLen + // update authority
		pubkeyLen + // mint
		4 + len(name) +
		4 + len(symbol) +
		4 + len(uri) +
		4 // empty additional_metadata vec
	return uint64(tlvHeaderLen + packed)
}

// RentSize returns the data length whose rent exemption must be funded when
// creating a mint with embedded metadata.
func RentSize(name, symbol, uri string) uint64 {
	return MintLenWithMetadataPointer + MetadataLen(name, symbol, uri)
}
