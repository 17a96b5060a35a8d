// Package api exposes the launchpad workflows over HTTP.
//
// A browser wallet never hands its key to the server, so each workflow is
// split in two requests: prepare returns a transaction that every local
// signer has signed, and complete accepts the wallet-signed copy, submits
// it and waits for confirmation.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/launchpad"
	"token-launchpad/internal/observability"
	"token-launchpad/internal/storage"
)

// MaxImageSize bounds the multipart body of a create request.
const MaxImageSize = 10 << 20

// Launchpad is the part of launchpad.Service the API drives.
type Launchpad interface {
	PrepareCreate(ctx context.Context, owner solanago.PublicKey, draft domain.DraftToken) (*domain.PendingTransaction, error)
	PrepareMint(ctx context.Context, owner solanago.PublicKey, mint, amount string) (*domain.PendingTransaction, error)
	Complete(ctx context.Context, id, signedTx string) (*launchpad.CompleteResult, error)
	Pending(ctx context.Context, id string) (*domain.PendingTransaction, error)
	Tokens() storage.TokenStore
	Mints() storage.MintStore
}

// Server serves the launchpad HTTP API.
type Server struct {
	svc     Launchpad
	metrics *observability.Metrics
	logger  *log.Logger
	started time.Time

	mu        sync.Mutex
	prepared  int
	completed int
	failed    int
}

// Options contains configuration for creating a Server.
type Options struct {
	Service Launchpad // required
	Metrics *observability.Metrics
	Logger  *log.Logger
}

// NewServer creates a new API server.
func NewServer(opts Options) *Server {
	s := &Server{
		svc:     opts.Service,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		started: time.Now(),
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Routes returns the HTTP handler with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())
	r.Get("/status", s.handleStatus)

	r.Route("/tokens", func(r chi.Router) {
		r.Get("/", s.handleListTokens)
		r.Post("/prepare", s.handlePrepareCreate)
		r.Get("/{mint}", s.handleGetToken)
		r.Get("/{mint}/mints", s.handleListMints)
	})
	r.Post("/mints/prepare", s.handlePrepareMint)
	r.Route("/workflows/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetWorkflow)
		r.Post("/complete", s.handleComplete)
	})

	return r
}

// instrument records request count and latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordHTTPRequest(r.Method+" "+route, status, time.Since(start))
	})
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	Started   time.Time `json:"started"`
	Prepared  int       `json:"prepared"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:    "running",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Started:   s.started,
		Prepared:  s.prepared,
		Completed: s.completed,
		Failed:    s.failed,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) count(field *int) {
	s.mu.Lock()
	*field++
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
