package x402

import (
	"fmt"
	"strconv"
	"time"
)

// GateConfig is the process-wide, startup-init/shutdown-release state a
// resource server needs to run the gate middleware.
type GateConfig struct {
	// FacilitatorURL is the primary facilitator's base URL.
	FacilitatorURL string
	// FallbackFacilitatorURL is tried when the primary facilitator call fails.
	FallbackFacilitatorURL string
	// ReceiverAccount is the default payTo account id for routes that don't
	// override it.
	ReceiverAccount string
	// Network selects which of the supported network tags this gate targets.
	Network string
	// VerifyOnly, when true, skips settlement entirely (verification-only mode).
	VerifyOnly bool
}

// FacilitatorConfig is the process-wide state a facilitator process needs.
type FacilitatorConfig struct {
	// StoreConnectionString addresses the replay/discovery store (a Redis URL).
	StoreConnectionString string
	// AllowInMemoryStore permits falling back to an in-process map when the
	// remote store is unreachable. Must be false in production.
	AllowInMemoryStore bool
	// SigningKey is the facilitator's optional fee-sponsorship secret key.
	// Empty means the facilitator never fee-bumps native-asset transactions.
	SigningKey string
	// Network selects which network tag this facilitator process serves.
	Network string
}

// LoadGateConfigFromEnv builds a GateConfig from environment variables via
// getenv, so callers can inject a fake environment in tests instead of this
// package reading os.Getenv directly.
func LoadGateConfigFromEnv(getenv func(string) string) (GateConfig, error) {
	cfg := GateConfig{
		FacilitatorURL:         getenv("X402_FACILITATOR_URL"),
		FallbackFacilitatorURL: getenv("X402_FALLBACK_FACILITATOR_URL"),
		ReceiverAccount:        getenv("X402_RECEIVER_ACCOUNT"),
		Network:                getenv("X402_NETWORK"),
	}
	if cfg.FacilitatorURL == "" {
		return GateConfig{}, fmt.Errorf("X402_FACILITATOR_URL is required")
	}
	if cfg.Network == "" {
		cfg.Network = "stellar-testnet"
	}
	if !IsSupportedNetwork(cfg.Network) {
		return GateConfig{}, fmt.Errorf("X402_NETWORK %q is not a supported network", cfg.Network)
	}
	if v := getenv("X402_VERIFY_ONLY"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return GateConfig{}, fmt.Errorf("X402_VERIFY_ONLY: %w", err)
		}
		cfg.VerifyOnly = parsed
	}
	return cfg, nil
}

// LoadFacilitatorConfigFromEnv builds a FacilitatorConfig from environment
// variables via getenv.
func LoadFacilitatorConfigFromEnv(getenv func(string) string) (FacilitatorConfig, error) {
	cfg := FacilitatorConfig{
		StoreConnectionString: getenv("X402_STORE_URL"),
		SigningKey:            getenv("X402_FACILITATOR_SIGNING_KEY"),
		Network:               getenv("X402_NETWORK"),
	}
	if cfg.Network == "" {
		cfg.Network = "stellar-testnet"
	}
	if !IsSupportedNetwork(cfg.Network) {
		return FacilitatorConfig{}, fmt.Errorf("X402_NETWORK %q is not a supported network", cfg.Network)
	}
	if cfg.StoreConnectionString == "" {
		if v := getenv("X402_ALLOW_INMEMORY_STORE"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return FacilitatorConfig{}, fmt.Errorf("X402_ALLOW_INMEMORY_STORE: %w", err)
			}
			cfg.AllowInMemoryStore = parsed
		}
		if !cfg.AllowInMemoryStore {
			return FacilitatorConfig{}, fmt.Errorf("%w: X402_STORE_URL is empty and X402_ALLOW_INMEMORY_STORE is not set", ErrProductionFallbackDisallowed)
		}
	}
	return cfg, nil
}

// DefaultTimeoutSeconds is the fallback request timeout budget when a Challenge
// omits MaxTimeoutSeconds.
const DefaultTimeoutSeconds = 300

// TimeoutOrDefault returns seconds as a time.Duration, substituting the
// default budget when seconds is non-positive.
func TimeoutOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = DefaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}
