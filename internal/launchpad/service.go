// Package launchpad runs the token creation and minting workflows: upload
// image and metadata, assemble the Token-2022 transaction, collect the
// wallet's signature, submit, confirm and record the result.
package launchpad

import (
	"log"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"token-launchpad/internal/observability"
	"token-launchpad/internal/pinning"
	"token-launchpad/internal/solana"
	"token-launchpad/internal/storage"
	"token-launchpad/internal/storage/memory"
)

// Defaults.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 1 * time.Second
	// DefaultPendingTTL roughly matches how long a blockhash stays valid.
	DefaultPendingTTL = 2 * time.Minute
)

// Service runs create and mint workflows. It is safe for concurrent use;
// each call runs its workflow on the caller's goroutine.
type Service struct {
	rpc     solana.RPCClient
	ws      solana.WSClient
	pinner  pinning.Pinner
	tokens  storage.TokenStore
	mints   storage.MintStore
	events  storage.EventStore
	pending storage.PendingStore
	metrics *observability.Metrics
	logger  *log.Logger

	confirmTimeout time.Duration
	pollInterval   time.Duration
	pendingTTL     time.Duration
	now            func() time.Time
	newID          func() string
	newMintKey     func() (solanago.PrivateKey, error)
}

// Options contains configuration for creating a Service.
type Options struct {
	RPC    solana.RPCClient // required
	WS     solana.WSClient  // optional; confirmation polls without it
	Pinner pinning.Pinner   // required for creation

	TokenStore   storage.TokenStore   // Default: in-memory
	MintStore    storage.MintStore    // Default: in-memory
	EventStore   storage.EventStore   // Default: in-memory
	PendingStore storage.PendingStore // Default: in-memory

	Metrics *observability.Metrics // Default: observability.DefaultMetrics
	Logger  *log.Logger

	ConfirmTimeout time.Duration // Default: 60s
	PollInterval   time.Duration // Default: 1s
	PendingTTL     time.Duration // Default: 2m

	// Now, NewID and NewMintKey are overridable for tests.
	Now        func() time.Time
	NewID      func() string
	NewMintKey func() (solanago.PrivateKey, error)
}

// NewService creates a new workflow service.
func NewService(opts Options) *Service {
	s := &Service{
		rpc:            opts.RPC,
		ws:             opts.WS,
		pinner:         opts.Pinner,
		tokens:         opts.TokenStore,
		mints:          opts.MintStore,
		events:         opts.EventStore,
		pending:        opts.PendingStore,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		confirmTimeout: opts.ConfirmTimeout,
		pollInterval:   opts.PollInterval,
		pendingTTL:     opts.PendingTTL,
		now:            opts.Now,
		newID:          opts.NewID,
		newMintKey:     opts.NewMintKey,
	}

	if s.tokens == nil {
		s.tokens = memory.NewTokenStore()
	}
	if s.mints == nil {
		s.mints = memory.NewMintStore()
	}
	if s.events == nil {
		s.events = memory.NewEventStore()
	}
	if s.pending == nil {
		s.pending = memory.NewPendingStore()
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.confirmTimeout <= 0 {
		s.confirmTimeout = DefaultConfirmTimeout
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}
	if s.pendingTTL <= 0 {
		s.pendingTTL = DefaultPendingTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.newMintKey == nil {
		s.newMintKey = solanago.NewRandomPrivateKey
	}

	return s
}

// Tokens returns the token store the service records creations in.
func (s *Service) Tokens() storage.TokenStore {
	return s.tokens
}

// Mints returns the mint store the service records mints in.
func (s *Service) Mints() storage.MintStore {
	return s.mints
}
