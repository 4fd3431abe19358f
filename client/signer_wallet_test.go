package client

import (
	"context"
	"errors"
	"testing"

	x402 "github.com/stellar-x402/x402-go"
)

func TestWalletSignerApprovedSignature(t *testing.T) {
	signer := NewWalletSigner("GACCOUNT", func(ctx context.Context, req ApprovalRequest) ([]byte, error) {
		if req.PublicKey != "GACCOUNT" {
			t.Errorf("expected approval request for GACCOUNT, got %s", req.PublicKey)
		}
		return []byte("approved-signature"), nil
	})

	pub, err := signer.PublicKey(context.Background())
	if err != nil || pub != "GACCOUNT" {
		t.Fatalf("PublicKey: %v, %s", err, pub)
	}

	sig, err := signer.Sign(context.Background(), [32]byte{9})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if string(sig) != "approved-signature" {
		t.Fatalf("unexpected signature: %s", sig)
	}
}

func TestWalletSignerDeclineSurfacesAsCancellation(t *testing.T) {
	signer := NewWalletSigner("GACCOUNT", func(ctx context.Context, req ApprovalRequest) ([]byte, error) {
		return nil, nil
	})

	_, err := signer.Sign(context.Background(), [32]byte{})
	if !errors.Is(err, x402.ErrSignerCancelled) {
		t.Fatalf("expected ErrSignerCancelled, got %v", err)
	}
}

func TestWalletSignerTransportErrorIsNotCancellation(t *testing.T) {
	transportErr := errors.New("wallet bridge disconnected")
	signer := NewWalletSigner("GACCOUNT", func(ctx context.Context, req ApprovalRequest) ([]byte, error) {
		return nil, transportErr
	})

	_, err := signer.Sign(context.Background(), [32]byte{})
	if errors.Is(err, x402.ErrSignerCancelled) {
		t.Fatal("expected a transport error, not a cancellation")
	}
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestWalletSignerRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	signer := NewWalletSigner("GACCOUNT", func(ctx context.Context, req ApprovalRequest) ([]byte, error) {
		t.Fatal("approve callback should not run once ctx is already cancelled")
		return nil, nil
	})

	if _, err := signer.Sign(ctx, [32]byte{}); err == nil {
		t.Fatal("expected context cancellation to short-circuit signing")
	}
}
