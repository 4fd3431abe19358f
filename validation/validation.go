// Package validation implements shape and semantic validation for
// Challenges and Payloads, independent of any particular ledger round-trip
// (that belongs to the facilitator's Verify algorithm in facilitator/).
package validation

import (
	"fmt"

	"github.com/stellar/go/strkey"

	"github.com/stellar-x402/x402-go"
)

// ValidateAmount checks that s is a positive, well-formed decimal integer
// string.
func ValidateAmount(s string) error {
	if !x402.IsValidAmountString(s) {
		return fmt.Errorf("invalid amount format: %q", s)
	}
	cmp, err := x402.CompareAmounts(s, "0")
	if err != nil {
		return err
	}
	if cmp <= 0 {
		return fmt.Errorf("amount must be greater than zero, got %q", s)
	}
	return nil
}

// ValidateAccountID checks that addr is a syntactically valid Stellar
// Ed25519 account id ("G..." strkey address).
func ValidateAccountID(addr string) error {
	if !strkey.IsValidEd25519PublicKey(addr) {
		return fmt.Errorf("invalid Stellar account id: %q", addr)
	}
	return nil
}

// ValidateAsset checks that asset is either the native-asset sentinel or a
// syntactically valid contract id ("C..." strkey address).
func ValidateAsset(asset string) error {
	if asset == x402.AssetNative {
		return nil
	}
	if !strkey.IsValidContract(asset) {
		return fmt.Errorf("invalid asset: %q (expected %q or a contract id)", asset, x402.AssetNative)
	}
	return nil
}

// ValidateChallenge validates a Challenge's shape.
func ValidateChallenge(c x402.Challenge) error {
	if c.Scheme != x402.SchemeExact {
		return fmt.Errorf("%w: scheme must be %q, got %q", x402.ErrUnsupportedScheme, x402.SchemeExact, c.Scheme)
	}
	if !x402.IsSupportedNetwork(c.Network) {
		return fmt.Errorf("%w: %q", x402.ErrUnsupportedNetworkTag, c.Network)
	}
	if err := ValidateAmount(c.MaxAmountRequired); err != nil {
		return fmt.Errorf("maxAmountRequired: %w", err)
	}
	if c.Resource == "" {
		return fmt.Errorf("resource is required")
	}
	if err := ValidateAccountID(c.PayTo); err != nil {
		return fmt.Errorf("payTo: %w", err)
	}
	if c.MaxTimeoutSeconds <= 0 {
		return fmt.Errorf("maxTimeoutSeconds must be positive, got %d", c.MaxTimeoutSeconds)
	}
	if err := ValidateAsset(c.Asset); err != nil {
		return err
	}
	return nil
}

// ValidatePayload validates a Payload's shape before it is handed to the
// facilitator's ledger-aware Verify algorithm. It does not decode the
// signed transaction XDR itself; that cross-check belongs to the ledger
// adapter.
func ValidatePayload(p x402.Payload) error {
	if p.X402Version != x402.X402Version {
		return fmt.Errorf("%w: %d", x402.ErrUnsupportedVersion, p.X402Version)
	}
	if p.Scheme != x402.SchemeExact {
		return fmt.Errorf("%w: %q", x402.ErrUnsupportedScheme, p.Scheme)
	}
	if !x402.IsSupportedNetwork(p.Network) {
		return fmt.Errorf("%w: %q", x402.ErrUnsupportedNetworkTag, p.Network)
	}
	if p.SignedTxXdr == "" {
		return fmt.Errorf("signedTxXdr is required")
	}
	if err := ValidateAccountID(p.SourceAccount); err != nil {
		return fmt.Errorf("sourceAccount: %w", err)
	}
	if err := ValidateAccountID(p.Destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if err := ValidateAmount(p.Amount); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if err := ValidateAsset(p.Asset); err != nil {
		return err
	}
	if p.ValidUntilLedger <= 0 {
		return fmt.Errorf("validUntilLedger must be positive")
	}
	return nil
}

// MatchesChallenge reports whether a Payload's declared fields are
// consistent with a Challenge, independent of signature/ledger checks.
func MatchesChallenge(p x402.Payload, c x402.Challenge) error {
	if p.Network != c.Network {
		return fmt.Errorf("%w", x402.ErrNetworkMismatch)
	}
	if p.Destination != c.PayTo {
		return fmt.Errorf("%w", x402.ErrDestinationMismatch)
	}
	if p.Asset != c.Asset {
		return fmt.Errorf("%w", x402.ErrAssetMismatch)
	}
	cmp, err := x402.CompareAmounts(p.Amount, c.MaxAmountRequired)
	if err != nil {
		return fmt.Errorf("%w: %v", x402.ErrAmountMismatch, err)
	}
	if cmp < 0 {
		return fmt.Errorf("%w", x402.ErrAmountMismatch)
	}
	return nil
}
