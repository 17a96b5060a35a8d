package token2022

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// CreateMintAccount allocates the mint account, owned by Token-2022 and
// funded with lamports.
func CreateMintAccount(payer, mint solana.PublicKey, lamports uint64) solana.Instruction {
	return system.NewCreateAccountInstruction(
		lamports,
		MintLenWithMetadataPointer,
		ProgramID,
		payer,
		mint,
	).Build()
}

// InitializeMetadataPointer points the mint's metadata at metadataAddress.
// Must run before InitializeMint.
func InitializeMetadataPointer(mint, authority, metadataAddress solana.PublicKey) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := writeAll(
		func() error { return enc.WriteUint8(instructionMetadataPointer) },
		func() error { return enc.WriteUint8(metadataPointerInitialize) },
		func() error { return enc.WriteBytes(authority[:], false) },
		func() error { return enc.WriteBytes(metadataAddress[:], false) },
	); err != nil {
		return nil, fmt.Errorf("encode metadata pointer: %w", err)
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(mint, true, false),
	}, buf.Bytes()), nil
}

// InitializeMint sets decimals and the mint authority. freezeAuthority may be nil.
func InitializeMint(mint solana.PublicKey, decimals uint8, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey) (solana.Instruction, error) {
	var freeze solana.PublicKey
	var hasFreeze uint8
	if freezeAuthority != nil {
		freeze = *freezeAuthority
		hasFreeze = 1
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := writeAll(
		func() error { return enc.WriteUint8(instructionInitializeMint) },
		func() error { return enc.WriteUint8(decimals) },
		func() error { return enc.WriteBytes(mintAuthority[:], false) },
		func() error { return enc.WriteUint8(hasFreeze) },
		func() error { return enc.WriteBytes(freeze[:], false) },
	); err != nil {
		return nil, fmt.Errorf("encode initialize mint: %w", err)
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}, buf.Bytes()), nil
}

// InitializeTokenMetadata writes name, symbol and uri into the metadata account.
// With a self-pointing mint, metadata and mint are the same account.
func InitializeTokenMetadata(metadata, updateAuthority, mint, mintAuthority solana.PublicKey, name, symbol, uri string) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := writeAll(
		func() error { return enc.WriteBytes(initializeMetadataDiscriminator[:], false) },
		func() error { return enc.WriteString(name) },
		func() error { return enc.WriteString(symbol) },
		func() error { return enc.WriteString(uri) },
	); err != nil {
		return nil, fmt.Errorf("encode token metadata: %w", err)
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(metadata, true, false),
		solana.NewAccountMeta(updateAuthority, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(mintAuthority, false, true),
	}, buf.Bytes()), nil
}

// CreateAssociatedTokenAccount creates owner's token account for mint at ata.
func CreateAssociatedTokenAccount(payer, ata, owner, mint solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(AssociatedTokenProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(ata, true, false),
		solana.NewAccountMeta(owner, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(ProgramID, false, false),
	}, make([]byte, associatedTokenCreateDataLength))
}

// MintTo mints amount raw units into destination.
func MintTo(mint, destination, authority solana.PublicKey, amount uint64) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := writeAll(
		func() error { return enc.WriteUint8(instructionMintTo) },
		func() error { return enc.WriteUint64(amount, bin.LE) },
	); err != nil {
		return nil, fmt.Errorf("encode mint to: %w", err)
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(authority, false, true),
	}, buf.Bytes()), nil
}

func writeAll(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
