// Package facilitator implements the trusted-but-unprivileged service that
// verifies payloads and submits them to the ledger.
package facilitator

import (
	"context"

	"github.com/stellar-x402/x402-go"
)

// Interface is the facilitator contract the gate calls through. Service
// satisfies it for an in-process facilitator and facilitator.Client for a
// remote one.
type Interface interface {
	// Verify is a pure check against the ledger's current state; it must
	// be safe to call repeatedly without side effects.
	Verify(ctx context.Context, payload x402.Payload, requirements x402.Challenge) (x402.VerifyResult, error)

	// Settle submits payload's transaction to the ledger, idempotent on
	// transaction hash via the replay store.
	Settle(ctx context.Context, payload x402.Payload, requirements x402.Challenge) (x402.SettleResult, error)

	// Supported lists the (scheme, network) pairs this facilitator handles.
	Supported(ctx context.Context) (x402.SupportedResponse, error)
}
