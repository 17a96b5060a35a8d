package launchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	solanago "github.com/gagliardetto/solana-go"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/solana"
	"token-launchpad/internal/storage"
	"token-launchpad/internal/token2022"
	"token-launchpad/internal/wallet"
)

type mintAssembly struct {
	tx             *solanago.Transaction
	tokenAccount   solanago.PublicKey
	createdAccount bool
}

// mintRequest is a validated mint call.
type mintRequest struct {
	owner     solanago.PublicKey
	mint      solanago.PublicKey
	token     *domain.TokenRecord
	amount    string
	rawAmount uint64
}

// MintTokens mints amount whole tokens of a recorded mint into the wallet's
// associated token account, creating the account if it does not exist.
// The wallet must be a Signer.
func (s *Service) MintTokens(ctx context.Context, w wallet.Wallet, mint, amount string) (*domain.MintRecord, error) {
	if !wallet.Connected(w) {
		return nil, ErrWalletNotConnected
	}
	signer, ok := wallet.AsSigner(w)
	if !ok {
		return nil, fmt.Errorf("%w: mint needs SignTransaction", ErrWalletCapability)
	}

	req, err := s.validateMint(ctx, w.PublicKey(), mint, amount)
	if err != nil {
		return nil, err
	}

	wf := s.begin(domain.WorkflowMint, req.owner.String())
	wf.mint = req.mint.String()

	asm, err := s.assembleMint(ctx, wf, req)
	if err != nil {
		return nil, wf.fail(ctx, err)
	}
	if err := wf.advance(domain.StateAwaitingSignature); err != nil {
		return nil, wf.fail(ctx, err)
	}

	if err := signer.SignTransaction(ctx, asm.tx); err != nil {
		return nil, wf.fail(ctx, &SubmitError{Stage: domain.StateAwaitingSignature, Err: err})
	}
	if err := wf.advance(domain.StateSubmitting); err != nil {
		return nil, wf.fail(ctx, err)
	}

	signature, err := s.send(ctx, asm.tx)
	if err != nil {
		return nil, wf.fail(ctx, err)
	}
	if err := s.waitConfirmed(ctx, signature); err != nil {
		return nil, wf.fail(ctx, &SubmitError{Stage: domain.StateSubmitting, Signature: signature, Err: err})
	}

	return s.finishMint(ctx, wf, &domain.MintRecord{
		Mint:           req.mint.String(),
		Owner:          req.owner.String(),
		TokenAccount:   asm.tokenAccount.String(),
		Amount:         req.amount,
		RawAmount:      req.rawAmount,
		CreatedAccount: asm.createdAccount,
	}, signature)
}

// validateMint checks everything a mint needs before touching the network:
// the token must be recorded and the amount must scale exactly.
func (s *Service) validateMint(ctx context.Context, owner solanago.PublicKey, mint, amount string) (*mintRequest, error) {
	if owner.IsZero() {
		return nil, ErrWalletNotConnected
	}
	if mint == "" {
		return nil, missingField("mint")
	}
	mintKey, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not an address", ErrUnknownToken, mint)
	}

	token, err := s.tokens.GetByMint(ctx, mintKey.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToken, mint)
		}
		return nil, fmt.Errorf("look up token %s: %w", mint, err)
	}

	raw, err := ScaleAmount(amount, token.Decimals)
	if err != nil {
		return nil, err
	}

	return &mintRequest{
		owner:     owner,
		mint:      mintKey,
		token:     token,
		amount:    amount,
		rawAmount: raw,
	}, nil
}

// assembleMint runs the assembling stage.
func (s *Service) assembleMint(ctx context.Context, wf *workflow, req *mintRequest) (*mintAssembly, error) {
	if err := wf.advance(domain.StateAssembling); err != nil {
		return nil, err
	}

	ataAddr, err := solana.AssociatedTokenAddress(req.owner.String(), req.mint.String(), solana.Token2022ProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive token account: %w", err)
	}
	ata := solanago.MustPublicKeyFromBase58(ataAddr)

	info, err := s.rpc.GetAccountInfo(ctx, ataAddr)
	if err != nil {
		return nil, fmt.Errorf("get token account %s: %w", ataAddr, err)
	}

	var instructions []solanago.Instruction
	created := info == nil
	if created {
		instructions = append(instructions, token2022.CreateAssociatedTokenAccount(req.owner, ata, req.owner, req.mint))
	}

	mintTo, err := token2022.MintTo(req.mint, ata, req.owner, req.rawAmount)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, mintTo)

	tx, err := s.newTransaction(ctx, instructions, req.owner)
	if err != nil {
		return nil, err
	}

	return &mintAssembly{tx: tx, tokenAccount: ata, createdAccount: created}, nil
}

func (s *Service) finishMint(ctx context.Context, wf *workflow, record *domain.MintRecord, signature string) (*domain.MintRecord, error) {
	if err := wf.confirm(ctx, signature); err != nil {
		return nil, err
	}

	record.Signature = signature
	record.CreatedAt = s.now().UnixMilli()

	start := time.Now()
	err := s.mints.Insert(ctx, record)
	s.metrics.RecordDBQuery("mints", "insert", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("record mint %s: %w", signature, err)
	}

	s.logger.Printf("minting done for token %s", record.Mint)
	return record, nil
}
