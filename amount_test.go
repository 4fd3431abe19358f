package x402

import "testing"

func TestNativeAmountToStroops(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"1", "1"},
		{"1.5", "15000000"},
		{"0.0000001", "1"},
		{"123.4567890", "1234567890"},
		{"10", "10"},
	}
	for _, tt := range tests {
		got, err := NativeAmountToStroops(tt.price)
		if err != nil {
			t.Fatalf("NativeAmountToStroops(%q): %v", tt.price, err)
		}
		if got != tt.want {
			t.Errorf("NativeAmountToStroops(%q) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestNativeAmountToStroopsInvalid(t *testing.T) {
	if _, err := NativeAmountToStroops("not-a-number"); err == nil {
		t.Fatal("expected error for invalid amount")
	}
}

func TestContractAmountToAtomic(t *testing.T) {
	got, err := ContractAmountToAtomic("1.50", 6)
	if err != nil {
		t.Fatalf("ContractAmountToAtomic: %v", err)
	}
	if got != "1500000" {
		t.Fatalf("expected 1500000, got %s", got)
	}
}

func TestContractAmountToAtomicDefaultsDecimals(t *testing.T) {
	got, err := ContractAmountToAtomic("1.5", 0)
	if err != nil {
		t.Fatalf("ContractAmountToAtomic: %v", err)
	}
	if got != "15000000" {
		t.Fatalf("expected default decimals (7) to produce 15000000, got %s", got)
	}
}

func TestCompareAmounts(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"10", "5", 1},
		{"5", "10", -1},
		{"10", "10", 0},
	}
	for _, tt := range tests {
		got, err := CompareAmounts(tt.a, tt.b)
		if err != nil {
			t.Fatalf("CompareAmounts(%q, %q): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("CompareAmounts(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareAmountsInvalid(t *testing.T) {
	if _, err := CompareAmounts("abc", "10"); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestIsValidAmountString(t *testing.T) {
	valid := []string{"0", "1", "10000000", "123456789012345"}
	for _, s := range valid {
		if !IsValidAmountString(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", "-1", "01", "1.5", "1e10", "1,000"}
	for _, s := range invalid {
		if IsValidAmountString(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestStroopsToLumensRoundTrip(t *testing.T) {
	got, err := StroopsToLumens("10000000")
	if err != nil {
		t.Fatalf("StroopsToLumens: %v", err)
	}
	if got != "1.0000000" {
		t.Fatalf("expected 1.0000000, got %s", got)
	}

	back, err := NativeAmountToStroops(got)
	if err != nil {
		t.Fatalf("NativeAmountToStroops: %v", err)
	}
	if back != "10000000" {
		t.Fatalf("round trip mismatch, got %s", back)
	}
}

func TestStroopsToLumensInvalid(t *testing.T) {
	if _, err := StroopsToLumens("not-a-number"); err == nil {
		t.Fatal("expected error for invalid stroop amount")
	}
}
