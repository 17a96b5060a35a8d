// Package main is the launchpad CLI. It creates and mints tokens with a
// local keypair, which signs and pays for every transaction.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"token-launchpad/internal/app"
	"token-launchpad/internal/config"
	"token-launchpad/internal/wallet"
)

var logger = log.New(os.Stderr, "[launchpad] ", log.LstdFlags)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&rootOptions{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	envFile string
	cfg     config.Config
	dryPin  bool
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "launchpad",
		Short:         "Create and mint Token-2022 tokens with on-chain metadata",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.envFile, "env-file", ".env", "File to load environment variables from")
	f.StringVar(&opts.cfg.RPCEndpoint, "rpc-endpoint", "", "Solana RPC HTTP endpoint (env SOLANA_RPC_ENDPOINT)")
	f.StringVar(&opts.cfg.WSEndpoint, "ws-endpoint", "", "Solana WebSocket endpoint (env SOLANA_WS_ENDPOINT)")
	f.StringVar(&opts.cfg.KeypairPath, "keypair", "", "Path to a solana-keygen JSON keypair (env SOLANA_KEYPAIR)")
	f.StringVar(&opts.cfg.KeypairSecret, "keypair-secret", "", "Secret Manager name holding the keypair (env SOLANA_KEYPAIR_SECRET)")
	f.BoolVar(&opts.cfg.UseMemory, "use-memory", false, "Keep records in memory instead of PostgreSQL/ClickHouse (env USE_MEMORY)")
	f.StringVar(&opts.cfg.Pinner, "pinner", "", "Artifact backend: pinata, gcs or memory (env PINNER)")
	f.BoolVar(&opts.dryPin, "dry-pin", false, "Keep uploads in memory; the on-chain URI will not resolve")

	cmd.AddCommand(newCreateCmd(opts), newMintCmd(opts))
	return cmd
}

// load merges env defaults under the flags that were set explicitly.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return err
	}
	env := config.FromEnv()
	flags := cmd.Flags()

	if !flags.Changed("rpc-endpoint") {
		o.cfg.RPCEndpoint = env.RPCEndpoint
	}
	if !flags.Changed("ws-endpoint") {
		o.cfg.WSEndpoint = env.WSEndpoint
	}
	if !flags.Changed("keypair") {
		o.cfg.KeypairPath = env.KeypairPath
	}
	if !flags.Changed("keypair-secret") {
		o.cfg.KeypairSecret = env.KeypairSecret
	}
	if !flags.Changed("use-memory") {
		o.cfg.UseMemory = env.UseMemory
	}
	if !flags.Changed("pinner") {
		o.cfg.Pinner = env.Pinner
	}
	if o.dryPin {
		o.cfg.Pinner = config.PinnerMemory
	}

	o.cfg.PostgresDSN = env.PostgresDSN
	o.cfg.ClickhouseDSN = env.ClickhouseDSN
	o.cfg.PinataJWT = env.PinataJWT
	o.cfg.PinataJWTSecret = env.PinataJWTSecret
	o.cfg.PinataAPIURL = env.PinataAPIURL
	o.cfg.PinataGatewayURL = env.PinataGatewayURL
	o.cfg.GCSBucket = env.GCSBucket
	o.cfg.GCSPrefix = env.GCSPrefix
	o.cfg.GCSPublicBaseURL = env.GCSPublicBaseURL
	o.cfg.GCPProject = env.GCPProject
	o.cfg.ConfirmTimeout = env.ConfirmTimeout
	o.cfg.PendingTTL = env.PendingTTL

	if err := o.cfg.Validate(); err != nil {
		return err
	}
	return o.cfg.ValidateWallet()
}

// open wires the service and loads the signing keypair.
func (o *rootOptions) open(ctx context.Context) (*app.App, *wallet.Keypair, error) {
	a, err := app.New(ctx, o.cfg, app.Options{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	kp, err := a.LoadWallet(ctx)
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("load wallet: %w", err)
	}
	logger.Printf("Wallet %s on %s", kp.PublicKey(), o.cfg.RPCEndpoint)
	return a, kp, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
