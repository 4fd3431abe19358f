// Package client builds the signed Payload a caller attaches to the
// X-Payment header in response to a Challenge.
package client

import "context"

// Signer is the capability a Builder needs to produce a signed payment: an
// account identity and the ability to sign a transaction hash under it.
// Two variants are supported: a synchronous
// local-key signer and an asynchronous, cancellable interactive wallet
// signer. There is no implicit global signer; every Builder is handed one
// explicitly.
type Signer interface {
	// PublicKey returns the account id this signer signs for.
	PublicKey(ctx context.Context) (string, error)

	// Sign produces a raw Ed25519 signature over hash. A wallet-backed
	// signer may block on user approval and must return an error wrapping
	// ErrSignerCancelled if the user declines, distinct from a transport
	// failure.
	Sign(ctx context.Context, hash [32]byte) ([]byte, error)
}
