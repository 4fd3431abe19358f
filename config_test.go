package x402

import (
	"testing"
	"time"
)

func fakeGetenv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadGateConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadGateConfigFromEnv(fakeGetenv(map[string]string{
		"X402_FACILITATOR_URL": "https://facilitator.example.com",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != "stellar-testnet" {
		t.Errorf("expected default network stellar-testnet, got %s", cfg.Network)
	}
	if cfg.VerifyOnly {
		t.Error("expected VerifyOnly to default false")
	}
}

func TestLoadGateConfigFromEnvRequiresFacilitatorURL(t *testing.T) {
	if _, err := LoadGateConfigFromEnv(fakeGetenv(nil)); err == nil {
		t.Fatal("expected error for missing X402_FACILITATOR_URL")
	}
}

func TestLoadGateConfigFromEnvRejectsUnknownNetwork(t *testing.T) {
	_, err := LoadGateConfigFromEnv(fakeGetenv(map[string]string{
		"X402_FACILITATOR_URL": "https://facilitator.example.com",
		"X402_NETWORK":         "bitcoin",
	}))
	if err == nil {
		t.Fatal("expected error for unsupported network")
	}
}

func TestLoadGateConfigFromEnvParsesVerifyOnly(t *testing.T) {
	cfg, err := LoadGateConfigFromEnv(fakeGetenv(map[string]string{
		"X402_FACILITATOR_URL": "https://facilitator.example.com",
		"X402_VERIFY_ONLY":     "true",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.VerifyOnly {
		t.Error("expected VerifyOnly true")
	}
}

func TestLoadFacilitatorConfigFromEnvRequiresStoreOrOptIn(t *testing.T) {
	if _, err := LoadFacilitatorConfigFromEnv(fakeGetenv(nil)); err == nil {
		t.Fatal("expected error when store url absent and in-memory opt-in absent")
	}
}

func TestLoadFacilitatorConfigFromEnvAllowsInMemoryOptIn(t *testing.T) {
	cfg, err := LoadFacilitatorConfigFromEnv(fakeGetenv(map[string]string{
		"X402_ALLOW_INMEMORY_STORE": "true",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.AllowInMemoryStore {
		t.Error("expected AllowInMemoryStore true")
	}
}

func TestLoadFacilitatorConfigFromEnvWithStoreURL(t *testing.T) {
	cfg, err := LoadFacilitatorConfigFromEnv(fakeGetenv(map[string]string{
		"X402_STORE_URL": "redis://localhost:6379/0",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreConnectionString != "redis://localhost:6379/0" {
		t.Errorf("unexpected store connection string %s", cfg.StoreConnectionString)
	}
}

func TestTimeoutOrDefault(t *testing.T) {
	if got := TimeoutOrDefault(0); got != DefaultTimeoutSeconds*time.Second {
		t.Errorf("expected default timeout, got %s", got)
	}
	if got := TimeoutOrDefault(-5); got != DefaultTimeoutSeconds*time.Second {
		t.Errorf("expected default timeout for negative input, got %s", got)
	}
	if got := TimeoutOrDefault(60); got != 60*time.Second {
		t.Errorf("expected 60s, got %s", got)
	}
}
