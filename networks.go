package x402

import "fmt"

// LedgerCloseSeconds is the expected average ledger close time for the
// Stellar network family, used to convert a timeout budget into a ledger
// sequence horizon.
const LedgerCloseSeconds = 5

// NetworkInfo is the static metadata a network tag resolves to.
type NetworkInfo struct {
	Tag               string
	Passphrase        string
	HorizonURL        string
	SorobanRPCURL     string
	FeeSponsorship    bool
}

var networks = map[string]NetworkInfo{
	"stellar": {
		Tag:            "stellar",
		Passphrase:     "Public Global Stellar Network ; September 2015",
		HorizonURL:     "https://horizon.stellar.org",
		SorobanRPCURL:  "https://soroban-rpc.mainnet.stellar.org",
		FeeSponsorship: true,
	},
	"stellar-testnet": {
		Tag:            "stellar-testnet",
		Passphrase:     "Test SDF Network ; September 2015",
		HorizonURL:     "https://horizon-testnet.stellar.org",
		SorobanRPCURL:  "https://soroban-rpc.testnet.stellar.org",
		FeeSponsorship: true,
	},
}

// LookupNetwork returns the static metadata for a supported network tag.
func LookupNetwork(tag string) (NetworkInfo, error) {
	info, ok := networks[tag]
	if !ok {
		return NetworkInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedNetworkTag, tag)
	}
	return info, nil
}

// SupportedNetworks returns every network tag this build recognizes, in a
// stable order, for use by Supported().
func SupportedNetworks() []string {
	return []string{"stellar-testnet", "stellar"}
}

// IsSupportedNetwork reports whether tag names a network this build knows.
func IsSupportedNetwork(tag string) bool {
	_, ok := networks[tag]
	return ok
}

// ErrUnsupportedNetworkTag is returned by LookupNetwork for an unknown tag.
var ErrUnsupportedNetworkTag = fmt.Errorf("unsupported network tag")
