package gate

import "testing"

func TestResolveAmountNativeDecimal(t *testing.T) {
	got, err := ResolveAmount(RouteRule{Price: "1.5"})
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != "15000000" {
		t.Fatalf("expected 15000000, got %s", got)
	}
}

func TestResolveAmountNativeWholeNumberPassesThrough(t *testing.T) {
	got, err := ResolveAmount(RouteRule{Price: "10000000"})
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != "10000000" {
		t.Fatalf("expected passthrough, got %s", got)
	}
}

func TestResolveAmountContractDecimalUsesAssetDecimals(t *testing.T) {
	got, err := ResolveAmount(RouteRule{Asset: "CONTRACTID", AssetDecimals: 6, Price: "1.50"})
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != "1500000" {
		t.Fatalf("expected 1500000, got %s", got)
	}
}

func TestResolveAmountContractDefaultsDecimals(t *testing.T) {
	got, err := ResolveAmount(RouteRule{Asset: "CONTRACTID", Price: "1.5"})
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != "15000000" {
		t.Fatalf("expected default 7 decimals to produce 15000000, got %s", got)
	}
}

func TestResolveAmountInvalidPrice(t *testing.T) {
	if _, err := ResolveAmount(RouteRule{Price: "not-a-number"}); err == nil {
		t.Fatal("expected error for invalid price")
	}
}

func TestResolveAssetDefaultsToNative(t *testing.T) {
	if got := ResolveAsset(RouteRule{}); got != "native" {
		t.Fatalf("expected native default, got %s", got)
	}
}

func TestResolveTimeoutSecondsDefaults(t *testing.T) {
	if got := ResolveTimeoutSeconds(RouteRule{}); got != 300 {
		t.Fatalf("expected default 300, got %d", got)
	}
	if got := ResolveTimeoutSeconds(RouteRule{TimeoutSeconds: 60}); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}
