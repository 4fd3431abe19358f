package client

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stellar/go/keypair"

	x402 "github.com/stellar-x402/x402-go"
	"github.com/stellar-x402/x402-go/encoding"
	"github.com/stellar-x402/x402-go/ledger"
)

func newTestSigner(t *testing.T) (*LocalSigner, string) {
	t.Helper()
	kp, err := keypair.Random()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	signer, err := NewLocalSignerFromSeed(kp.Seed())
	if err != nil {
		t.Fatalf("NewLocalSignerFromSeed: %v", err)
	}
	return signer, kp.Address()
}

func TestBuilderBuildsNativePayload(t *testing.T) {
	signer, address := newTestSigner(t)
	mock := ledger.NewMock()
	mock.PutAccount(ledger.Account{AccountID: address, Sequence: 10, NativeBalance: big.NewInt(50_000_000)})
	mock.LedgerSequence = 1000

	builder := NewBuilder(mock, signer)
	payTo, _ := keypair.Random()

	header, err := builder.Build(context.Background(), x402.Challenge{
		Scheme:            x402.SchemeExact,
		Network:           "stellar-testnet",
		MaxAmountRequired: "10000000",
		PayTo:             payTo.Address(),
		MaxTimeoutSeconds: 300,
		Asset:             x402.AssetNative,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if header == "" {
		t.Fatal("expected a non-empty X-Payment header value")
	}

	payload, err := encoding.DecodePayload(header)
	if err != nil {
		t.Fatalf("decode built header: %v", err)
	}
	if payload.SourceAccount != address {
		t.Errorf("expected source account %s, got %s", address, payload.SourceAccount)
	}
	if payload.Destination != payTo.Address() {
		t.Errorf("expected destination %s, got %s", payTo.Address(), payload.Destination)
	}
	if payload.Amount != "10000000" {
		t.Errorf("expected amount 10000000, got %s", payload.Amount)
	}
	if payload.ValidUntilLedger != 1000+60 {
		t.Errorf("expected validUntilLedger 1060 (1000 + ceil(300/5)), got %d", payload.ValidUntilLedger)
	}
	if payload.Nonce == "" {
		t.Error("expected a non-empty nonce")
	}
	if payload.SignedTxXdr == "" {
		t.Error("expected a non-empty signed transaction")
	}
}

func TestBuilderDefaultsTimeoutWhenChallengeOmitsIt(t *testing.T) {
	signer, address := newTestSigner(t)
	mock := ledger.NewMock()
	mock.PutAccount(ledger.Account{AccountID: address, Sequence: 1, NativeBalance: big.NewInt(50_000_000)})
	mock.LedgerSequence = 2000

	builder := NewBuilder(mock, signer)
	payTo, _ := keypair.Random()

	header, err := builder.Build(context.Background(), x402.Challenge{
		Network:           "stellar",
		MaxAmountRequired: "1",
		PayTo:             payTo.Address(),
		Asset:             x402.AssetNative,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	payload, err := encoding.DecodePayload(header)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantValidUntil := int64(2000) + ceilDiv(int64(x402.DefaultTimeoutSeconds), x402.LedgerCloseSeconds)
	if payload.ValidUntilLedger != wantValidUntil {
		t.Errorf("expected validUntilLedger %d, got %d", wantValidUntil, payload.ValidUntilLedger)
	}
}

func TestBuilderPropagatesSignerCancellation(t *testing.T) {
	address := "GSOMEADDRESS"
	mock := ledger.NewMock()
	mock.PutAccount(ledger.Account{AccountID: address, Sequence: 1, NativeBalance: big.NewInt(50_000_000)})

	wallet := NewWalletSigner(address, func(ctx context.Context, req ApprovalRequest) ([]byte, error) {
		return nil, nil
	})
	builder := NewBuilder(mock, wallet)

	_, err := builder.Build(context.Background(), x402.Challenge{
		Network:           "stellar-testnet",
		MaxAmountRequired: "1",
		PayTo:             "GDEST",
		Asset:             x402.AssetNative,
	})
	if err == nil {
		t.Fatal("expected an error when the wallet declines to sign")
	}
	if !errors.Is(err, x402.ErrSignerCancelled) {
		t.Fatalf("expected ErrSignerCancelled, got %v", err)
	}
}

func TestBuilderRejectsUnsupportedNetwork(t *testing.T) {
	signer, address := newTestSigner(t)
	mock := ledger.NewMock()
	mock.PutAccount(ledger.Account{AccountID: address, Sequence: 1, NativeBalance: big.NewInt(1)})
	builder := NewBuilder(mock, signer)

	_, err := builder.Build(context.Background(), x402.Challenge{
		Network:           "bitcoin",
		MaxAmountRequired: "1",
		PayTo:             "GDEST",
		Asset:             x402.AssetNative,
	})
	if err == nil {
		t.Fatal("expected an error for an unsupported network")
	}
}
