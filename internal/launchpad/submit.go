package launchpad

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/solana"
)

// newTransaction attaches the latest finalized blockhash and the fee payer.
func (s *Service) newTransaction(ctx context.Context, instructions []solanago.Instruction, payer solanago.PublicKey) (*solanago.Transaction, error) {
	latest, err := s.rpc.GetLatestBlockhash(ctx, solana.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}
	blockhash, err := solanago.HashFromBase58(latest.Blockhash)
	if err != nil {
		return nil, fmt.Errorf("parse blockhash %q: %w", latest.Blockhash, err)
	}

	tx, err := solanago.NewTransaction(instructions, blockhash, solanago.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	return tx, nil
}

// send submits a fully signed transaction once. It is never retried.
func (s *Service) send(ctx context.Context, tx *solanago.Transaction) (string, error) {
	if err := tx.VerifySignatures(); err != nil {
		return "", &SubmitError{Stage: domain.StateSubmitting, Err: fmt.Errorf("%w: %v", ErrSignatureRejected, err)}
	}

	encoded, err := tx.ToBase64()
	if err != nil {
		return "", &SubmitError{Stage: domain.StateSubmitting, Err: fmt.Errorf("encode transaction: %w", err)}
	}

	signature, err := s.rpc.SendTransaction(ctx, encoded, &solana.SendOpts{
		PreflightCommitment: solana.CommitmentConfirmed,
	})
	if err != nil {
		return "", &SubmitError{Stage: domain.StateSubmitting, Signature: tx.Signatures[0].String(), Err: err}
	}
	return signature, nil
}
