package token2022

import (
	"encoding/binary"
	"testing"

	solana "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizes(t *testing.T) {
	assert.Equal(t, 234, MintLenWithMetadataPointer)

	// 4 TLV + 32 + 32 + (4+4) + (4+3) + (4+20) + 4
	assert.Equal(t, uint64(111), MetadataLen("Test", "TST", "https://example.com/"))
	assert.Equal(t, uint64(234+111), RentSize("Test", "TST", "https://example.com/"))
}

func TestDiscriminator(t *testing.T) {
	assert.Equal(t, [8]byte{210, 225, 30, 162, 88, 184, 77, 141}, initializeMetadataDiscriminator)
}

func TestCreateMintAccount(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix := CreateMintAccount(payer, mint, 4_000_000)
	assert.Equal(t, solana.SystemProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, mint, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 4+8+8+32)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(4_000_000), binary.LittleEndian.Uint64(data[4:12]))
	assert.Equal(t, uint64(MintLenWithMetadataPointer), binary.LittleEndian.Uint64(data[12:20]))
	assert.Equal(t, ProgramID[:], data[20:52])
}

func TestInitializeMetadataPointer(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := InitializeMetadataPointer(mint, authority, mint)
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 66)
	assert.Equal(t, byte(39), data[0])
	assert.Equal(t, byte(0), data[1])
	assert.Equal(t, authority[:], data[2:34])
	assert.Equal(t, mint[:], data[34:66])

	accounts := ix.Accounts()
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].IsWritable)
}

func TestInitializeMint(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := InitializeMint(mint, 6, authority, nil)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 67)
	assert.Equal(t, byte(0), data[0])
	assert.Equal(t, byte(6), data[1])
	assert.Equal(t, authority[:], data[2:34])
	assert.Equal(t, byte(0), data[34], "no freeze authority")
	assert.Equal(t, make([]byte, 32), data[35:67])

	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, mint, accounts[0].PublicKey)
	assert.Equal(t, solana.SysVarRentPubkey, accounts[1].PublicKey)
}

func TestInitializeMint_FreezeAuthority(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	freeze := solana.NewWallet().PublicKey()

	ix, err := InitializeMint(mint, 9, authority, &freeze)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, byte(1), data[34])
	assert.Equal(t, freeze[:], data[35:67])
}

func TestInitializeTokenMetadata(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	wallet := solana.NewWallet().PublicKey()

	ix, err := InitializeTokenMetadata(mint, wallet, mint, wallet, "Test", "TST", "ipfs://x")
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)

	want := []byte{210, 225, 30, 162, 88, 184, 77, 141}
	want = append(want, 4, 0, 0, 0)
	want = append(want, "Test"...)
	want = append(want, 3, 0, 0, 0)
	want = append(want, "TST"...)
	want = append(want, 8, 0, 0, 0)
	want = append(want, "ipfs://x"...)
	assert.Equal(t, want, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, mint, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, wallet, accounts[1].PublicKey)
	assert.Equal(t, mint, accounts[2].PublicKey)
	assert.Equal(t, wallet, accounts[3].PublicKey)
	assert.True(t, accounts[3].IsSigner)
}

func TestCreateAssociatedTokenAccount(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	ata := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix := CreateAssociatedTokenAccount(payer, ata, payer, mint)
	assert.Equal(t, AssociatedTokenProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Empty(t, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, solana.SystemProgramID, accounts[4].PublicKey)
	assert.Equal(t, ProgramID, accounts[5].PublicKey)
}

func TestMintTo(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := MintTo(mint, dest, authority, 5_000_000)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, byte(7), data[0])
	assert.Equal(t, uint64(5_000_000), binary.LittleEndian.Uint64(data[1:]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.True(t, accounts[0].IsWritable)
	assert.True(t, accounts[1].IsWritable)
	assert.True(t, accounts[2].IsSigner)
}
