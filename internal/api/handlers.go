package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/launchpad"
	"token-launchpad/internal/storage"
)

// PendingResponse is returned by the prepare endpoints and GET /workflows/{id}.
type PendingResponse struct {
	ID          string               `json:"id"`
	Kind        domain.WorkflowKind  `json:"kind"`
	State       domain.WorkflowState `json:"state"`
	Mint        string               `json:"mint"`
	Owner       string               `json:"owner"`
	Transaction string               `json:"transaction"`
	ExpiresAt   time.Time            `json:"expires_at"`

	Token        *domain.TokenRecord `json:"token,omitempty"`
	TokenAccount string              `json:"token_account,omitempty"`
	Amount       string              `json:"amount,omitempty"`
	RawAmount    uint64              `json:"raw_amount,omitempty"`
}

func pendingResponse(p *domain.PendingTransaction) PendingResponse {
	return PendingResponse{
		ID:           p.ID,
		Kind:         p.Kind,
		State:        p.State,
		Mint:         p.Mint,
		Owner:        p.Owner,
		Transaction:  p.Transaction,
		ExpiresAt:    time.UnixMilli(p.ExpiresAt).UTC(),
		Token:        p.Token,
		TokenAccount: p.TokenAccount,
		Amount:       p.Amount,
		RawAmount:    p.RawAmount,
	}
}

// handlePrepareCreate accepts a multipart form with owner, name, symbol,
// description, decimals, supply and an image file.
// POST /tokens/prepare
func (s *Server) handlePrepareCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: parse form: %v", errBadRequest, err))
		return
	}

	owner, err := parseOwner(r.FormValue("owner"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	draft, err := parseDraft(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.PrepareCreate(r.Context(), owner, draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.count(&s.prepared)
	writeJSON(w, http.StatusCreated, pendingResponse(p))
}

func parseDraft(r *http.Request) (domain.DraftToken, error) {
	decimals, err := launchpad.ParseDecimals(r.FormValue("decimals"))
	if err != nil {
		return domain.DraftToken{}, err
	}
	supply, err := launchpad.ParseSupply(r.FormValue("supply"))
	if err != nil {
		return domain.DraftToken{}, err
	}

	draft := domain.DraftToken{
		Name:          r.FormValue("name"),
		Symbol:        r.FormValue("symbol"),
		Description:   r.FormValue("description"),
		Decimals:      decimals,
		InitialSupply: supply,
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return draft, nil
	case err != nil:
		return domain.DraftToken{}, fmt.Errorf("%w: image: %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.DraftToken{}, fmt.Errorf("%w: read image: %v", errBadRequest, err)
	}
	draft.Image = domain.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return draft, nil
}

type prepareMintRequest struct {
	Owner  string `json:"owner"`
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

// POST /mints/prepare
func (s *Server) handlePrepareMint(w http.ResponseWriter, r *http.Request) {
	var req prepareMintRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := parseOwner(req.Owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.PrepareMint(r.Context(), owner, strings.TrimSpace(req.Mint), strings.TrimSpace(req.Amount))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.count(&s.prepared)
	writeJSON(w, http.StatusCreated, pendingResponse(p))
}

type completeRequest struct {
	// Transaction is the wallet-signed transaction, base64.
	Transaction string `json:"transaction"`
}

// POST /workflows/{id}/complete
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Transaction == "" {
		s.writeError(w, r, fmt.Errorf("%w: transaction", launchpad.ErrMissingField))
		return
	}

	result, err := s.svc.Complete(r.Context(), chi.URLParam(r, "id"), req.Transaction)
	if err != nil {
		if !errors.Is(err, launchpad.ErrPendingNotFound) {
			s.count(&s.failed)
		}
		s.writeError(w, r, err)
		return
	}
	s.count(&s.completed)
	writeJSON(w, http.StatusOK, result)
}

// GET /workflows/{id}
func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Pending(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pendingResponse(p))
}

// GET /tokens/{mint}
func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.svc.Tokens().GetByMint(r.Context(), chi.URLParam(r, "mint"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// GET /tokens?owner=
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		s.writeError(w, r, fmt.Errorf("%w: owner", launchpad.ErrMissingField))
		return
	}
	tokens, err := s.svc.Tokens().ListByOwner(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tokens == nil {
		tokens = []*domain.TokenRecord{}
	}
	writeJSON(w, http.StatusOK, tokens)
}

// GET /tokens/{mint}/mints
func (s *Server) handleListMints(w http.ResponseWriter, r *http.Request) {
	mint := chi.URLParam(r, "mint")
	if _, err := s.svc.Tokens().GetByMint(r.Context(), mint); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = fmt.Errorf("%w: %s", launchpad.ErrUnknownToken, mint)
		}
		s.writeError(w, r, err)
		return
	}

	mints, err := s.svc.Mints().ListByMint(r.Context(), mint)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if mints == nil {
		mints = []*domain.MintRecord{}
	}
	writeJSON(w, http.StatusOK, mints)
}

func parseOwner(s string) (solanago.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solanago.PublicKey{}, launchpad.ErrWalletNotConnected
	}
	owner, err := solanago.PublicKeyFromBase58(s)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("%w: owner %q is not an address", errBadRequest, s)
	}
	return owner, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}
