package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-launchpad/internal/config"
)

func TestRootOptions_Load(t *testing.T) {
	t.Setenv("SOLANA_RPC_ENDPOINT", "http://env:8899")
	t.Setenv("SOLANA_KEYPAIR", "/env/id.json")
	t.Setenv("USE_MEMORY", "true")
	t.Setenv("PINNER", config.PinnerPinata)
	t.Setenv("PINATA_JWT", "jwt")

	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--rpc-endpoint", "http://flag:8899",
		"--dry-pin",
	}))
	require.NoError(t, opts.load(cmd))

	assert.Equal(t, "http://flag:8899", opts.cfg.RPCEndpoint)
	assert.Equal(t, "/env/id.json", opts.cfg.KeypairPath)
	assert.True(t, opts.cfg.UseMemory)
	assert.Equal(t, config.PinnerMemory, opts.cfg.Pinner)
}

func TestRootOptions_LoadRequiresWallet(t *testing.T) {
	t.Setenv("SOLANA_RPC_ENDPOINT", "http://env:8899")
	t.Setenv("SOLANA_KEYPAIR", "")
	t.Setenv("SOLANA_KEYPAIR_SECRET", "")
	t.Setenv("USE_MEMORY", "true")

	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "--dry-pin"}))
	err := opts.load(cmd)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n"), 0o600))
	img, err := readImage(png)
	require.NoError(t, err)
	assert.Equal(t, "logo.png", img.Filename)
	assert.Equal(t, "image/png", img.ContentType)

	noExt := filepath.Join(dir, "logo")
	require.NoError(t, os.WriteFile(noExt, []byte("\x89PNG\r\n\x1a\n"), 0o600))
	img, err = readImage(noExt)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)

	_, err = readImage(filepath.Join(dir, "absent.png"))
	assert.Error(t, err)
}

func TestCreateCmd_DecimalsDefault(t *testing.T) {
	cmd := newCreateCmd(&rootOptions{})
	flag := cmd.Flags().Lookup("decimals")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}
