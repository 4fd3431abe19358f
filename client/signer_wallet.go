package client

import (
	"context"
	"fmt"

	x402 "github.com/stellar-x402/x402-go"
)

// ApprovalRequest describes a pending signature request handed to a
// WalletSigner's approval callback: the account asked to sign and the
// exact bytes it would sign over.
type ApprovalRequest struct {
	PublicKey string
	Hash      [32]byte
}

// ApprovalFunc asks the user (or an out-of-process wallet) to approve
// signing req, returning the raw signature on approval. Implementations
// must return an error wrapping x402.ErrSignerCancelled when the user
// declines, so callers can distinguish a deliberate rejection from a
// transport failure.
type ApprovalFunc func(ctx context.Context, req ApprovalRequest) ([]byte, error)

// WalletSigner is the interactive signer variant: PublicKey is known up
// front, but Sign suspends on Approve, which may block on user input and
// may be cancelled via ctx or by the user declining.
type WalletSigner struct {
	AccountID string
	Approve   ApprovalFunc
}

// NewWalletSigner builds a WalletSigner for accountID, delegating every
// signature to approve.
func NewWalletSigner(accountID string, approve ApprovalFunc) *WalletSigner {
	return &WalletSigner{AccountID: accountID, Approve: approve}
}

func (s *WalletSigner) PublicKey(ctx context.Context) (string, error) {
	return s.AccountID, nil
}

func (s *WalletSigner) Sign(ctx context.Context, hash [32]byte) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	sig, err := s.Approve(ctx, ApprovalRequest{PublicKey: s.AccountID, Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("wallet approval: %w", err)
	}
	if sig == nil {
		return nil, fmt.Errorf("wallet approval: %w", x402.ErrSignerCancelled)
	}
	return sig, nil
}

var _ Signer = (*WalletSigner)(nil)
