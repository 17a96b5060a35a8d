package launchpad

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/observability"
	"token-launchpad/internal/pinning"
	"token-launchpad/internal/solana"
	"token-launchpad/internal/solana/stub"
	"token-launchpad/internal/storage/memory"
	"token-launchpad/internal/wallet"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	svc     *Service
	rpc     *stub.RPCClient
	pinner  *pinning.MemoryPinner
	tokens  *memory.TokenStore
	mints   *memory.MintStore
	events  *memory.EventStore
	pending *memory.PendingStore
	metrics *observability.Metrics
	clock   *fakeClock
	owner   *wallet.Keypair
}

func newHarness(t *testing.T, configure ...func(*Options)) *harness {
	t.Helper()

	h := &harness{
		rpc:     stub.NewRPCClient(),
		pinner:  pinning.NewMemoryPinner("https://gateway.test"),
		tokens:  memory.NewTokenStore(),
		mints:   memory.NewMintStore(),
		events:  memory.NewEventStore(),
		metrics: observability.NewMetricsWithRegistry("test", prometheus.NewRegistry()),
		clock:   &fakeClock{t: time.UnixMilli(1_700_000_000_000)},
		owner:   wallet.NewKeypair(solanago.NewWallet().PrivateKey),
	}
	h.pending = memory.NewPendingStoreWithClock(h.clock.Now)

	opts := Options{
		RPC:            h.rpc,
		Pinner:         h.pinner,
		TokenStore:     h.tokens,
		MintStore:      h.mints,
		EventStore:     h.events,
		PendingStore:   h.pending,
		Metrics:        h.metrics,
		Logger:         log.New(io.Discard, "", 0),
		ConfirmTimeout: 2 * time.Second,
		PollInterval:   5 * time.Millisecond,
		Now:            h.clock.Now,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	h.svc = NewService(opts)
	return h
}

func testDraft() domain.DraftToken {
	return domain.DraftToken{
		Name:          "Test",
		Symbol:        "TST",
		Description:   "a test token",
		Decimals:      6,
		InitialSupply: 1000,
		Image: domain.Image{
			Filename: "logo.png",
			Data:     pngHeader,
		},
	}
}

// seedToken records a token owned by h.owner, as a finished creation would.
func (h *harness) seedToken(t *testing.T, decimals uint8) *domain.TokenRecord {
	t.Helper()
	token := &domain.TokenRecord{
		Mint:     solanago.NewWallet().PublicKey().String(),
		Owner:    h.owner.PublicKey().String(),
		Name:     "Seeded",
		Symbol:   "SEED",
		Decimals: decimals,
	}
	require.NoError(t, h.tokens.Insert(context.Background(), token))
	return token
}

// sentTx decodes the last transaction the stub RPC received.
func (h *harness) sentTx(t *testing.T) *solanago.Transaction {
	t.Helper()
	raw := h.rpc.LastSent()
	require.NotNil(t, raw, "no transaction sent")
	tx, err := solanago.TransactionFromBytes(raw)
	require.NoError(t, err)
	return tx
}

func programs(t *testing.T, tx *solanago.Transaction) []solanago.PublicKey {
	t.Helper()
	out := make([]solanago.PublicKey, len(tx.Message.Instructions))
	for i, ci := range tx.Message.Instructions {
		p, err := tx.Message.Program(ci.ProgramIDIndex)
		require.NoError(t, err)
		out[i] = p
	}
	return out
}

// senderWallet signs and submits through the given RPC client in one step.
type senderWallet struct {
	*wallet.Keypair
	rpc       solana.RPCClient
	signCalls int
	sendCalls int
}

func (w *senderWallet) SignTransaction(ctx context.Context, tx *solanago.Transaction) error {
	w.signCalls++
	return w.Keypair.SignTransaction(ctx, tx)
}

func (w *senderWallet) SignAndSendTransaction(ctx context.Context, tx *solanago.Transaction) (solanago.Signature, error) {
	w.sendCalls++
	if err := w.Keypair.SignTransaction(ctx, tx); err != nil {
		return solanago.Signature{}, err
	}
	encoded, err := tx.ToBase64()
	if err != nil {
		return solanago.Signature{}, err
	}
	sig, err := w.rpc.SendTransaction(ctx, encoded, nil)
	if err != nil {
		return solanago.Signature{}, err
	}
	return solanago.SignatureFromBase58(sig)
}

// sendOnlyWallet can sign and send but not sign alone.
type sendOnlyWallet struct {
	key solanago.PrivateKey
}

func (w sendOnlyWallet) PublicKey() solanago.PublicKey {
	return w.key.PublicKey()
}

func (w sendOnlyWallet) SignAndSendTransaction(context.Context, *solanago.Transaction) (solanago.Signature, error) {
	return solanago.Signature{}, wallet.ErrRejected
}

// rejectingSigner declines every signature request.
type rejectingSigner struct {
	key solanago.PublicKey
}

func (w rejectingSigner) PublicKey() solanago.PublicKey {
	return w.key
}

func (w rejectingSigner) SignTransaction(context.Context, *solanago.Transaction) error {
	return wallet.ErrRejected
}

// fakeWS answers SubscribeSignature from a prepared script.
type fakeWS struct {
	subscribeErr error
	notification *solana.SignatureNotification
	closeEarly   bool
	calls        int
}

func (f *fakeWS) SubscribeSignature(ctx context.Context, signature string, _ solana.Commitment) (<-chan solana.SignatureNotification, error) {
	f.calls++
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	ch := make(chan solana.SignatureNotification, 1)
	switch {
	case f.notification != nil:
		n := *f.notification
		n.Signature = signature
		ch <- n
		close(ch)
	case f.closeEarly:
		close(ch)
	}
	return ch, nil
}

func (f *fakeWS) Close() error {
	return nil
}

var (
	_ wallet.Sender   = (*senderWallet)(nil)
	_ wallet.Sender   = sendOnlyWallet{}
	_ wallet.Signer   = rejectingSigner{}
	_ solana.WSClient = (*fakeWS)(nil)
)
