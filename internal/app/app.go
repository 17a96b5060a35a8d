// Package app builds a launchpad.Service and its dependencies from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	gcs "cloud.google.com/go/storage"

	"token-launchpad/internal/config"
	"token-launchpad/internal/launchpad"
	"token-launchpad/internal/observability"
	"token-launchpad/internal/pinning"
	"token-launchpad/internal/solana"
	"token-launchpad/internal/storage"
	chstore "token-launchpad/internal/storage/clickhouse"
	"token-launchpad/internal/storage/memory"
	"token-launchpad/internal/storage/migrations"
	pgstore "token-launchpad/internal/storage/postgres"
	redisstore "token-launchpad/internal/storage/redis"
	"token-launchpad/internal/wallet"
)

// App holds a wired service and everything that must be closed with it.
type App struct {
	Service *launchpad.Service
	Metrics *observability.Metrics
	Config  config.Config

	secrets config.SecretSource
	closers []func() error
	logger  *log.Logger
}

// Options contains optional overrides for New.
type Options struct {
	Metrics *observability.Metrics // Default: observability.DefaultMetrics
	Logger  *log.Logger
	Secrets config.SecretSource // Default: Secret Manager when the config needs it
}

// stores holds all storage implementations.
type stores struct {
	tokens  storage.TokenStore
	mints   storage.MintStore
	events  storage.EventStore
	pending storage.PendingStore
}

// New connects every dependency named by cfg. On error, whatever was
// already opened is closed.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	a := &App{
		Metrics: opts.Metrics,
		Config:  cfg,
		secrets: opts.Secrets,
		logger:  opts.Logger,
	}
	if a.Metrics == nil {
		a.Metrics = observability.DefaultMetrics
	}
	if a.logger == nil {
		a.logger = log.New(os.Stdout, "[app] ", log.LstdFlags|log.Lshortfile)
	}

	svc, err := a.build(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Service = svc
	return a, nil
}

func (a *App) build(ctx context.Context) (*launchpad.Service, error) {
	if a.secrets == nil && a.Config.NeedsSecretManager() {
		sm, err := config.NewSecretManager(ctx, a.Config.GCPProject)
		if err != nil {
			return nil, err
		}
		a.secrets = sm
		a.closers = append(a.closers, sm.Close)
	}
	if a.secrets != nil {
		if err := config.ResolveSecrets(ctx, &a.Config, a.secrets); err != nil {
			return nil, err
		}
	}

	st, err := a.createStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("create stores: %w", err)
	}

	pinner, err := a.createPinner(ctx)
	if err != nil {
		return nil, fmt.Errorf("create pinner: %w", err)
	}

	rpc := solana.NewHTTPClient(a.Config.RPCEndpoint, solana.WithObserver(a.Metrics.RecordRPCCall))

	var ws solana.WSClient
	if a.Config.WSEndpoint != "" {
		wsConfig := solana.DefaultWSConfig()
		wsConfig.Logger = log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lshortfile)
		client, err := solana.NewWSClient(ctx, a.Config.WSEndpoint, &wsConfig)
		if err != nil {
			return nil, fmt.Errorf("create websocket client: %w", err)
		}
		ws = client
		a.closers = append(a.closers, client.Close)
	}

	return launchpad.NewService(launchpad.Options{
		RPC:            rpc,
		WS:             ws,
		Pinner:         pinner,
		TokenStore:     st.tokens,
		MintStore:      st.mints,
		EventStore:     st.events,
		PendingStore:   st.pending,
		Metrics:        a.Metrics,
		Logger:         log.New(os.Stdout, "[launchpad] ", log.LstdFlags|log.Lshortfile),
		ConfirmTimeout: a.Config.ConfirmTimeout,
		PendingTTL:     a.Config.PendingTTL,
	}), nil
}

// createStores creates all required stores.
func (a *App) createStores(ctx context.Context) (*stores, error) {
	st := &stores{}

	if a.Config.RedisURL != "" {
		client, err := redisstore.NewClient(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		st.pending = redisstore.NewPendingStore(client)
	} else {
		st.pending = memory.NewPendingStore()
	}

	if a.Config.UseMemory {
		st.tokens = memory.NewTokenStore()
		st.mints = memory.NewMintStore()
		st.events = memory.NewEventStore()
		return st, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, a.Config.PostgresDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, a.Config.ClickhouseDSN)
	if err != nil {
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	a.closers = append(a.closers, chConn.Close)

	st.tokens = pgstore.NewTokenStore(pool)
	st.mints = pgstore.NewMintStore(pool)
	st.events = chstore.NewEventStore(chConn)
	return st, nil
}

func (a *App) createPinner(ctx context.Context) (pinning.Pinner, error) {
	logger := log.New(os.Stdout, "[pinning] ", log.LstdFlags|log.Lshortfile)

	switch a.Config.Pinner {
	case config.PinnerPinata:
		return pinning.NewPinataClient(a.Config.PinataJWT,
			pinning.WithAPIURL(a.Config.PinataAPIURL),
			pinning.WithGatewayURL(a.Config.PinataGatewayURL),
			pinning.WithLogger(logger),
		), nil
	case config.PinnerGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return pinning.NewGCSPinner(pinning.NewGCSObjectStore(client, a.Config.GCSBucket), pinning.GCSPinnerOptions{
			Bucket:        a.Config.GCSBucket,
			Prefix:        a.Config.GCSPrefix,
			PublicBaseURL: a.Config.GCSPublicBaseURL,
			Logger:        logger,
		}), nil
	case config.PinnerMemory:
		a.logger.Println("Using in-memory pinner; uploaded URLs will not resolve")
		return pinning.NewMemoryPinner(""), nil
	default:
		return nil, fmt.Errorf("unknown pinner %q", a.Config.Pinner)
	}
}

// LoadWallet returns the CLI keypair from a file or from Secret Manager.
func (a *App) LoadWallet(ctx context.Context) (*wallet.Keypair, error) {
	if a.Config.KeypairPath != "" {
		return wallet.LoadKeypairFile(a.Config.KeypairPath)
	}
	if a.secrets == nil {
		return nil, fmt.Errorf("%w: no keypair configured", config.ErrInvalid)
	}
	data, err := config.KeypairBytes(ctx, &a.Config, a.secrets)
	if err != nil {
		return nil, err
	}
	return wallet.ParseKeypair(data)
}

// Close releases every opened dependency in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
