package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	x402 "github.com/stellar-x402/x402-go"
	"github.com/stellar-x402/x402-go/encoding"
	"github.com/stellar-x402/x402-go/ledger"
)

// Builder assembles the signed Payload a caller sends back in response to
// a Challenge. Grounded on the svm signer's options-pattern
// shape, ported from instruction assembly against a Solana RPC client to
// transaction assembly against ledger.Adapter.
type Builder struct {
	Ledger ledger.Adapter
	Signer Signer
}

// NewBuilder pairs a ledger adapter with a signer.
func NewBuilder(adapter ledger.Adapter, signer Signer) *Builder {
	return &Builder{Ledger: adapter, Signer: signer}
}

// Build runs the client payment algorithm end to end and returns the
// base64(JSON) value for the X-Payment header.
func (b *Builder) Build(ctx context.Context, requirements x402.Challenge) (string, error) {
	payload, err := b.buildPayload(ctx, requirements)
	if err != nil {
		return "", err
	}
	header, err := encoding.EncodePayload(payload)
	if err != nil {
		return "", fmt.Errorf("encode X-Payment header: %w", err)
	}
	return header, nil
}

func (b *Builder) buildPayload(ctx context.Context, requirements x402.Challenge) (x402.Payload, error) {
	// Step 1: resolve the caller's account id via the signer.
	account, err := b.Signer.PublicKey(ctx)
	if err != nil {
		return x402.Payload{}, fmt.Errorf("resolve signer account: %w", err)
	}

	network, err := x402.LookupNetwork(requirements.Network)
	if err != nil {
		return x402.Payload{}, err
	}

	// Step 2: load the current sequence from the ledger adapter.
	acc, err := b.Ledger.GetAccount(ctx, account)
	if err != nil {
		return x402.Payload{}, fmt.Errorf("load account: %w", err)
	}

	timeoutSeconds := requirements.MaxTimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = x402.DefaultTimeoutSeconds
	}

	amount, ok := new(big.Int).SetString(requirements.MaxAmountRequired, 10)
	if !ok {
		return x402.Payload{}, fmt.Errorf("invalid maxAmountRequired %q", requirements.MaxAmountRequired)
	}

	var unsignedXDR string
	if requirements.Asset == x402.AssetNative {
		// Step 3: build a native payment operation.
		unsignedXDR, err = b.Ledger.BuildNativePaymentXDR(ctx, ledger.NativePaymentParams{
			SourceAccount:  account,
			Destination:    requirements.PayTo,
			AmountStroops:  amount,
			Sequence:       acc.Sequence + 1,
			TimeoutSeconds: timeoutSeconds,
		})
	} else {
		// Step 4: assemble a contract transfer(from, to, amount) invocation.
		// Simulation against the smart-contract RPC is performed inside the
		// ledger adapter's BuildContractTransferXDR, which applies the
		// simulated resource footprint; authorization entries from the
		// simulation are not applied.
		unsignedXDR, err = b.Ledger.BuildContractTransferXDR(ctx, ledger.ContractTransferParams{
			ContractID:   requirements.Asset,
			From:         account,
			To:           requirements.PayTo,
			AmountAtomic: amount,
		}, account, acc.Sequence+1, timeoutSeconds)
	}
	if err != nil {
		return x402.Payload{}, fmt.Errorf("build transaction: %w", err)
	}

	// Step 5: validUntilLedger = currentLedger + ceil(timeout / ledger_close_seconds).
	currentLedger, err := b.Ledger.CurrentLedgerSequence(ctx)
	if err != nil {
		return x402.Payload{}, fmt.Errorf("read current ledger sequence: %w", err)
	}
	validUntilLedger := int64(currentLedger) + ceilDiv(int64(timeoutSeconds), x402.LedgerCloseSeconds)

	// Step 6: a fresh random nonce.
	nonce := uuid.New().String()

	// Step 7: sign the inner transaction. Only inner-transaction signing is
	// ever offered here; a fee-bump envelope, if any, is assembled solely by
	// the facilitator.
	signedXDR, err := b.Ledger.SignTransactionXDR(unsignedXDR, network.Passphrase, func(hash [32]byte) ([]byte, error) {
		return b.Signer.Sign(ctx, hash)
	})
	if err != nil {
		return x402.Payload{}, fmt.Errorf("sign transaction: %w", err)
	}

	// Step 8: assemble the Payload; the caller base64-encodes it for the
	// X-Payment header.
	return x402.Payload{
		X402Version:      x402.X402Version,
		Scheme:           x402.SchemeExact,
		Network:          requirements.Network,
		SignedTxXdr:      signedXDR,
		SourceAccount:    account,
		Amount:           requirements.MaxAmountRequired,
		Destination:      requirements.PayTo,
		Asset:            requirements.Asset,
		ValidUntilLedger: validUntilLedger,
		Nonce:            nonce,
	}, nil
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
