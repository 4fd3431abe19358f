package x402

import "testing"

func TestLookupNetworkKnownTags(t *testing.T) {
	for _, tag := range []string{"stellar", "stellar-testnet"} {
		info, err := LookupNetwork(tag)
		if err != nil {
			t.Fatalf("LookupNetwork(%q): %v", tag, err)
		}
		if info.Tag != tag {
			t.Errorf("expected Tag %q, got %q", tag, info.Tag)
		}
		if info.Passphrase == "" || info.HorizonURL == "" || info.SorobanRPCURL == "" {
			t.Errorf("expected fully populated NetworkInfo for %q, got %+v", tag, info)
		}
	}
}

func TestLookupNetworkUnknownTag(t *testing.T) {
	if _, err := LookupNetwork("ethereum-mainnet"); err == nil {
		t.Fatal("expected error for unsupported network tag")
	}
}

func TestIsSupportedNetwork(t *testing.T) {
	if !IsSupportedNetwork("stellar") {
		t.Error("expected stellar to be supported")
	}
	if IsSupportedNetwork("bitcoin") {
		t.Error("expected bitcoin to be unsupported")
	}
}

func TestSupportedNetworksCoversAllKnownTags(t *testing.T) {
	tags := SupportedNetworks()
	if len(tags) != 2 {
		t.Fatalf("expected 2 supported network tags, got %d", len(tags))
	}
	for _, tag := range tags {
		if !IsSupportedNetwork(tag) {
			t.Errorf("SupportedNetworks returned unsupported tag %q", tag)
		}
	}
}
