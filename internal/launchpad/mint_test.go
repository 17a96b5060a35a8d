package launchpad

import (
	"context"
	"encoding/binary"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/solana"
	"token-launchpad/internal/token2022"
	"token-launchpad/internal/wallet"
)

func ataOf(t *testing.T, owner solanago.PublicKey, mint string) string {
	t.Helper()
	ata, err := solana.AssociatedTokenAddress(owner.String(), mint, solana.Token2022ProgramID)
	require.NoError(t, err)
	return ata
}

func TestMintTokens_CreatesTokenAccount(t *testing.T) {
	h := newHarness(t)
	token := h.seedToken(t, 6)

	record, err := h.svc.MintTokens(context.Background(), h.owner, token.Mint, "5")
	require.NoError(t, err)

	assert.Equal(t, uint64(5_000_000), record.RawAmount)
	assert.Equal(t, "5", record.Amount)
	assert.True(t, record.CreatedAccount)
	assert.Equal(t, ataOf(t, h.owner.PublicKey(), token.Mint), record.TokenAccount)

	tx := h.sentTx(t)
	require.NoError(t, tx.VerifySignatures())
	require.Len(t, tx.Message.Instructions, 2)
	assert.Equal(t, []solanago.PublicKey{token2022.AssociatedTokenProgramID, token2022.ProgramID}, programs(t, tx))

	mintTo := tx.Message.Instructions[1].Data
	require.Len(t, mintTo, 9)
	assert.Equal(t, byte(7), mintTo[0])
	assert.Equal(t, uint64(5_000_000), binary.LittleEndian.Uint64(mintTo[1:]))

	mints, err := h.mints.ListByMint(context.Background(), token.Mint)
	require.NoError(t, err)
	require.Len(t, mints, 1)
	assert.Equal(t, record.Signature, mints[0].Signature)

	events := h.events.All()
	require.Len(t, events, 1)
	assert.Equal(t, domain.WorkflowMint, events[0].Kind)
	assert.Equal(t, domain.StateConfirmed, events[0].State)
}

func TestMintTokens_ExistingTokenAccount(t *testing.T) {
	h := newHarness(t)
	token := h.seedToken(t, 0)
	h.rpc.AddAccount(ataOf(t, h.owner.PublicKey(), token.Mint), &solana.AccountInfo{
		Lamports: 2_039_280,
		Owner:    solana.Token2022ProgramID,
	})

	record, err := h.svc.MintTokens(context.Background(), h.owner, token.Mint, "42")
	require.NoError(t, err)
	assert.False(t, record.CreatedAccount)
	assert.Equal(t, uint64(42), record.RawAmount)

	tx := h.sentTx(t)
	require.Len(t, tx.Message.Instructions, 1)
	assert.Equal(t, []solanago.PublicKey{token2022.ProgramID}, programs(t, tx))
}

func TestMintTokens_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		mint   func(token *domain.TokenRecord) string
		amount string
		want   error
	}{
		{"unknown token", func(*domain.TokenRecord) string { return solanago.NewWallet().PublicKey().String() }, "1", ErrUnknownToken},
		{"not an address", func(*domain.TokenRecord) string { return "not-a-mint" }, "1", ErrUnknownToken},
		{"no mint", func(*domain.TokenRecord) string { return "" }, "1", ErrMissingField},
		{"zero amount", func(tk *domain.TokenRecord) string { return tk.Mint }, "0", ErrInvalidAmount},
		{"negative amount", func(tk *domain.TokenRecord) string { return tk.Mint }, "-3", ErrInvalidAmount},
		{"not a number", func(tk *domain.TokenRecord) string { return tk.Mint }, "lots", ErrInvalidAmount},
		{"too precise", func(tk *domain.TokenRecord) string { return tk.Mint }, "0.0000001", ErrInvalidAmount},
		{"overflow", func(tk *domain.TokenRecord) string { return tk.Mint }, "18446744073709551616", ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			token := h.seedToken(t, 6)

			_, err := h.svc.MintTokens(context.Background(), h.owner, tt.mint(token), tt.amount)
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, h.rpc.TotalCalls())
			assert.Empty(t, h.events.All())
		})
	}
}

func TestMintTokens_Wallet(t *testing.T) {
	h := newHarness(t)
	token := h.seedToken(t, 6)

	_, err := h.svc.MintTokens(context.Background(), nil, token.Mint, "1")
	assert.ErrorIs(t, err, ErrWalletNotConnected)

	_, err = h.svc.MintTokens(context.Background(), sendOnlyWallet{key: solanago.NewWallet().PrivateKey}, token.Mint, "1")
	assert.ErrorIs(t, err, ErrWalletCapability, "mint needs SignTransaction")

	_, err = h.svc.MintTokens(context.Background(), wallet.PublicOnly(h.owner.PublicKey()), token.Mint, "1")
	assert.ErrorIs(t, err, ErrWalletCapability)

	assert.Zero(t, h.rpc.TotalCalls())
}

func TestCreateThenMint_SharesDecimals(t *testing.T) {
	h := newHarness(t)
	draft := testDraft()
	draft.Decimals = 2

	token, err := h.svc.CreateToken(context.Background(), h.owner, draft)
	require.NoError(t, err)
	initMint := h.sentTx(t).Message.Instructions[2].Data
	assert.Equal(t, byte(2), initMint[1])

	record, err := h.svc.MintTokens(context.Background(), h.owner, token.Mint, "1.5")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), record.RawAmount)

	mintTo := h.sentTx(t).Message.Instructions[1].Data
	assert.Equal(t, uint64(150), binary.LittleEndian.Uint64(mintTo[1:]))
	assert.Equal(t, 2, h.rpc.Calls("sendTransaction"))
}
