package x402

import (
	"fmt"
	"math/big"
	"strings"
)

// stroopsPerUnit is 10^7, the number of smallest native-asset units (stroops)
// per whole unit.
var stroopsPerUnit = big.NewInt(10_000_000)

// DefaultContractDecimals is used for a contract asset when no decimal
// count is declared on the Challenge's Extra map.
const DefaultContractDecimals = 7

// NativeAmountToStroops converts a decimal-string price (e.g. "1.5" units)
// into the integer stroop amount carried on the wire, truncating any
// fractional stroop remainder. An already-integer string passes through
// unchanged.
func NativeAmountToStroops(price string) (string, error) {
	if !strings.Contains(price, ".") {
		if _, ok := new(big.Int).SetString(price, 10); !ok {
			return "", fmt.Errorf("invalid amount %q", price)
		}
		return price, nil
	}
	rat, ok := new(big.Rat).SetString(price)
	if !ok {
		return "", fmt.Errorf("invalid decimal amount %q", price)
	}
	rat.Mul(rat, new(big.Rat).SetInt(stroopsPerUnit))
	// Truncate toward zero: integer division of numerator by denominator.
	quotient := new(big.Int).Quo(rat.Num(), rat.Denom())
	return quotient.String(), nil
}

// ContractAmountToAtomic converts a decimal-string price into the asset's
// smallest unit given its decimal count, truncating any remainder. A
// whole-number string passes through unchanged.
func ContractAmountToAtomic(price string, decimals int) (string, error) {
	if decimals <= 0 {
		decimals = DefaultContractDecimals
	}
	if !strings.Contains(price, ".") {
		if _, ok := new(big.Int).SetString(price, 10); !ok {
			return "", fmt.Errorf("invalid amount %q", price)
		}
		return price, nil
	}
	rat, ok := new(big.Rat).SetString(price)
	if !ok {
		return "", fmt.Errorf("invalid decimal amount %q", price)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat.Mul(rat, new(big.Rat).SetInt(scale))
	quotient := new(big.Int).Quo(rat.Num(), rat.Denom())
	return quotient.String(), nil
}

// CompareAmounts returns -1, 0, or 1 comparing two non-negative decimal
// integer strings as arbitrary-precision integers.
func CompareAmounts(a, b string) (int, error) {
	ai, ok := new(big.Int).SetString(a, 10)
	if !ok {
		return 0, fmt.Errorf("invalid integer amount %q", a)
	}
	bi, ok := new(big.Int).SetString(b, 10)
	if !ok {
		return 0, fmt.Errorf("invalid integer amount %q", b)
	}
	return ai.Cmp(bi), nil
}

// IsValidAmountString reports whether s is a non-negative decimal integer
// string with no thousands separators and no leading zeros other than "0"
// itself.
func IsValidAmountString(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		if i == 0 && r == '0' && len(s) > 1 {
			return false
		}
	}
	return true
}

// StroopsToLumens converts an integer stroop amount into the decimal-string
// form the Stellar SDK's payment operation expects.
func StroopsToLumens(stroops string) (string, error) {
	n, ok := new(big.Int).SetString(stroops, 10)
	if !ok {
		return "", fmt.Errorf("invalid stroop amount %q", stroops)
	}
	rat := new(big.Rat).SetFrac(n, stroopsPerUnit)
	return rat.FloatString(7), nil
}
