package launchpad

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/storage"
)

// CompleteResult is the outcome of a completed server-mode workflow.
type CompleteResult struct {
	ID        string              `json:"id"`
	Kind      domain.WorkflowKind `json:"kind"`
	Signature string              `json:"signature"`
	Token     *domain.TokenRecord `json:"token,omitempty"`
	Mint      *domain.MintRecord  `json:"mint,omitempty"`
}

// PrepareCreate runs the creation workflow up to the wallet signature for a
// wallet known only by its address. The returned transaction is signed by
// the mint identity and waits for the owner's signature.
func (s *Service) PrepareCreate(ctx context.Context, owner solanago.PublicKey, draft domain.DraftToken) (*domain.PendingTransaction, error) {
	draft = normalizeDraft(draft)
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if owner.IsZero() {
		return nil, ErrWalletNotConnected
	}

	wf := s.begin(domain.WorkflowCreate, owner.String())
	asm, err := s.assembleCreate(ctx, wf, owner, draft)
	if err != nil {
		return nil, wf.fail(ctx, err)
	}

	p := &domain.PendingTransaction{Token: asm.token}
	if err := s.park(ctx, wf, asm.tx, p); err != nil {
		return nil, wf.fail(ctx, err)
	}
	return p, nil
}

// PrepareMint runs the mint workflow up to the wallet signature.
func (s *Service) PrepareMint(ctx context.Context, owner solanago.PublicKey, mint, amount string) (*domain.PendingTransaction, error) {
	req, err := s.validateMint(ctx, owner, mint, amount)
	if err != nil {
		return nil, err
	}

	wf := s.begin(domain.WorkflowMint, owner.String())
	wf.mint = req.mint.String()

	asm, err := s.assembleMint(ctx, wf, req)
	if err != nil {
		return nil, wf.fail(ctx, err)
	}

	p := &domain.PendingTransaction{
		TokenAccount:   asm.tokenAccount.String(),
		Amount:         req.amount,
		RawAmount:      req.rawAmount,
		CreatedAccount: asm.createdAccount,
	}
	if err := s.park(ctx, wf, asm.tx, p); err != nil {
		return nil, wf.fail(ctx, err)
	}
	return p, nil
}

// park moves the workflow to awaiting_signature and stores it as pending.
func (s *Service) park(ctx context.Context, wf *workflow, tx *solanago.Transaction, p *domain.PendingTransaction) error {
	if err := wf.advance(domain.StateAwaitingSignature); err != nil {
		return err
	}

	encoded, err := tx.ToBase64()
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}

	now := s.now()
	p.ID = wf.id
	p.Kind = wf.kind
	p.State = wf.state
	p.Mint = wf.mint
	p.Owner = wf.owner
	p.Transaction = encoded
	p.StartedAt = wf.started.UnixMilli()
	p.ExpiresAt = now.Add(s.pendingTTL).UnixMilli()

	if err := s.pending.Put(ctx, p, s.pendingTTL); err != nil {
		return fmt.Errorf("store pending transaction: %w", err)
	}

	s.metrics.RecordPrepared(wf.kind.String())
	s.logger.Printf("%s workflow %s awaiting signature from %s", wf.kind, wf.id, wf.owner)
	return nil
}

// Pending returns a pending transaction that has not expired or completed.
func (s *Service) Pending(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	p, err := s.pending.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("get pending transaction %s: %w", id, err)
	}
	return p, nil
}

// Complete accepts the wallet-signed form of a prepared transaction, submits
// it and waits for confirmation. A pending transaction completes at most
// once; the signed transaction must carry the prepared message unchanged.
func (s *Service) Complete(ctx context.Context, id, signedTx string) (*CompleteResult, error) {
	p, err := s.pending.Take(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("take pending transaction %s: %w", id, err)
	}
	if s.now().UnixMilli() >= p.ExpiresAt {
		return nil, ErrPendingNotFound
	}

	wf := s.resume(p)
	result, err := s.complete(ctx, wf, p, signedTx)
	if err != nil {
		s.metrics.RecordCompleted(p.Kind.String(), completeResult(err))
		return nil, wf.fail(ctx, err)
	}
	s.metrics.RecordCompleted(p.Kind.String(), "confirmed")
	return result, nil
}

func (s *Service) complete(ctx context.Context, wf *workflow, p *domain.PendingTransaction, signedTx string) (*CompleteResult, error) {
	tx, err := verifySigned(p.Transaction, signedTx)
	if err != nil {
		return nil, &SubmitError{Stage: domain.StateAwaitingSignature, Err: err}
	}
	if err := wf.advance(domain.StateSubmitting); err != nil {
		return nil, err
	}

	signature, err := s.send(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := s.waitConfirmed(ctx, signature); err != nil {
		return nil, &SubmitError{Stage: domain.StateSubmitting, Signature: signature, Err: err}
	}

	result := &CompleteResult{ID: p.ID, Kind: p.Kind, Signature: signature}
	switch p.Kind {
	case domain.WorkflowCreate:
		if p.Token == nil {
			return nil, fmt.Errorf("pending creation %s has no token", p.ID)
		}
		token := *p.Token
		if result.Token, err = s.finishCreate(ctx, wf, &token, signature); err != nil {
			return nil, err
		}
	case domain.WorkflowMint:
		record := &domain.MintRecord{
			Mint:           p.Mint,
			Owner:          p.Owner,
			TokenAccount:   p.TokenAccount,
			Amount:         p.Amount,
			RawAmount:      p.RawAmount,
			CreatedAccount: p.CreatedAccount,
		}
		if result.Mint, err = s.finishMint(ctx, wf, record, signature); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("pending transaction %s has unknown kind %q", p.ID, p.Kind)
	}
	return result, nil
}

// verifySigned decodes the wallet's transaction and checks that it carries
// the prepared message and a valid signature from every required signer.
func verifySigned(prepared, signed string) (*solanago.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(signed)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64: %v", ErrSignatureRejected, err)
	}
	tx, err := solanago.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSignatureRejected, err)
	}

	want, err := solanago.TransactionFromBase64(prepared)
	if err != nil {
		return nil, fmt.Errorf("decode prepared transaction: %w", err)
	}

	wantMsg, err := want.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode prepared message: %w", err)
	}
	gotMsg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: encode message: %v", ErrSignatureRejected, err)
	}
	if !bytes.Equal(wantMsg, gotMsg) {
		return nil, fmt.Errorf("%w: message differs from the prepared transaction", ErrSignatureRejected)
	}

	if err := tx.VerifySignatures(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureRejected, err)
	}
	return tx, nil
}

func completeResult(err error) string {
	switch {
	case errors.Is(err, ErrSignatureRejected):
		return "rejected"
	case errors.Is(err, ErrTransactionFailed):
		return "failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
