package gate

import (
	"fmt"

	x402 "github.com/stellar-x402/x402-go"
)

// defaultContractDecimals is used when a RouteRule targeting a contract
// asset omits AssetDecimals.
const defaultContractDecimals = 7

// ResolveAmount converts a RouteRule's Price into the wire amount for its
// Challenge: a decimal string for the native asset is multiplied by 10^7
// and truncated to an integer (x402.NativeAmountToStroops); a decimal
// string for a contract asset is interpreted against its declared decimal
// count (x402.ContractAmountToAtomic, default 7 decimals); a whole-number
// string passes through unchanged either way.
func ResolveAmount(rule RouteRule) (string, error) {
	asset := rule.Asset
	if asset == "" {
		asset = x402.AssetNative
	}
	if x402.IsValidAmountString(rule.Price) {
		return rule.Price, nil
	}
	if asset == x402.AssetNative {
		amount, err := x402.NativeAmountToStroops(rule.Price)
		if err != nil {
			return "", fmt.Errorf("resolve native price %q: %w", rule.Price, err)
		}
		return amount, nil
	}
	decimals := rule.AssetDecimals
	if decimals == 0 {
		decimals = defaultContractDecimals
	}
	amount, err := x402.ContractAmountToAtomic(rule.Price, decimals)
	if err != nil {
		return "", fmt.Errorf("resolve contract price %q: %w", rule.Price, err)
	}
	return amount, nil
}

// ResolveAsset returns the rule's asset, defaulting to the native sentinel.
func ResolveAsset(rule RouteRule) string {
	if rule.Asset == "" {
		return x402.AssetNative
	}
	return rule.Asset
}

// ResolveTimeoutSeconds returns the rule's timeout, substituting the shared
// package default when the rule leaves it unset.
func ResolveTimeoutSeconds(rule RouteRule) int {
	if rule.TimeoutSeconds <= 0 {
		return x402.DefaultTimeoutSeconds
	}
	return rule.TimeoutSeconds
}
