package launchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-launchpad/internal/solana"
)

var errSubscriptionLost = errors.New("signature subscription unavailable")

// waitConfirmed blocks until signature reaches confirmed commitment, the
// cluster reports a transaction error, or the confirm timeout passes.
// A WebSocket subscription is used when configured, polling otherwise.
func (s *Service) waitConfirmed(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	if s.ws != nil {
		err := s.waitSubscribed(ctx, signature)
		if !errors.Is(err, errSubscriptionLost) {
			return err
		}
		s.logger.Printf("%v, polling status of %s", err, signature)
	}
	return s.pollStatus(ctx, signature)
}

func (s *Service) waitSubscribed(ctx context.Context, signature string) error {
	notifications, err := s.ws.SubscribeSignature(ctx, signature, solana.CommitmentConfirmed)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", errSubscriptionLost, err)
	}

	// The transaction may have confirmed before the subscription was active.
	if done, err := s.signatureStatus(ctx, signature); errors.Is(err, ErrTransactionFailed) || (err == nil && done) {
		return err
	}

	select {
	case n, ok := <-notifications:
		if !ok {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errSubscriptionLost
		}
		if n.Err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionFailed, n.Err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) pollStatus(ctx context.Context, signature string) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		done, err := s.signatureStatus(ctx, signature)
		switch {
		case errors.Is(err, ErrTransactionFailed):
			return err
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Printf("get signature status %s: %v", signature, err)
		case done:
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// signatureStatus reports whether signature reached confirmed commitment.
// A transaction error is returned as ErrTransactionFailed.
func (s *Service) signatureStatus(ctx context.Context, signature string) (bool, error) {
	statuses, err := s.rpc.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return false, err
	}
	if len(statuses) == 0 || statuses[0] == nil {
		return false, nil
	}

	status := statuses[0]
	if status.Err != nil {
		return false, fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
	}
	return status.Reached(solana.CommitmentConfirmed), nil
}
