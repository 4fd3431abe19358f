// Package x402 provides the core entities of the x402 payment mediation
// pipeline for Stellar-family ledgers: the 402 challenge, the signed
// payment payload carried in the X-Payment header, and the results the
// facilitator and gate exchange while processing it.
package x402

import "encoding/json"

// SchemeExact is the only payment scheme this implementation supports.
const SchemeExact = "exact"

// AssetNative is the sentinel asset value meaning "the ledger's built-in
// asset" rather than a contract id.
const AssetNative = "native"

// X402Version is the protocol version carried on every Challenge and Payload.
const X402Version = 1

// Challenge describes what must be paid, to whom, on which network, and in
// which asset before a protected resource is released. It is never stored;
// it is derived fresh for every unpaid request.
type Challenge struct {
	Scheme            string         `json:"scheme"`
	Network           string         `json:"network"`
	MaxAmountRequired string         `json:"maxAmountRequired"`
	Resource          string         `json:"resource"`
	Description       string         `json:"description,omitempty"`
	MimeType          string         `json:"mimeType,omitempty"`
	PayTo             string         `json:"payTo"`
	MaxTimeoutSeconds int            `json:"maxTimeoutSeconds"`
	Asset             string         `json:"asset"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// ChallengeResponse is the JSON body of a 402 response.
type ChallengeResponse struct {
	X402Version int         `json:"x402Version"`
	Error       string      `json:"error"`
	Accepts     []Challenge `json:"accepts"`
}

// Payload is the signed transaction plus metadata carried base64-encoded
// in the X-Payment header.
type Payload struct {
	X402Version      int    `json:"x402Version"`
	Scheme           string `json:"scheme"`
	Network          string `json:"network"`
	SignedTxXdr      string `json:"signedTxXdr"`
	SourceAccount    string `json:"sourceAccount"`
	Amount           string `json:"amount"`
	Destination      string `json:"destination"`
	Asset            string `json:"asset"`
	ValidUntilLedger int64  `json:"validUntilLedger"`
	Nonce            string `json:"nonce"`
}

// VerifyRequest is the body of POST /verify and POST /settle.
type VerifyRequest struct {
	X402Version         int       `json:"x402Version"`
	PaymentPayload      Payload   `json:"paymentPayload"`
	PaymentRequirements Challenge `json:"paymentRequirements"`
}

// VerifyResult is the outcome of checking a Payload against a Challenge,
// without mutating any ledger state.
type VerifyResult struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

// SettleResult is the outcome of submitting a Payload's transaction to the
// ledger (or returning the cached result of having already done so).
type SettleResult struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"errorReason,omitempty"`
	Payer       string `json:"payer,omitempty"`
	Transaction string `json:"transaction"`
	Network     string `json:"network"`
}

// SettlementHeader is the decoded form of the X-Payment-Response header.
type SettlementHeader struct {
	Success     bool   `json:"success"`
	Transaction string `json:"transaction"`
	Network     string `json:"network"`
	Payer       string `json:"payer"`
}

// SupportedKind names one (scheme, network) pair the facilitator handles.
type SupportedKind struct {
	Scheme  string         `json:"scheme"`
	Network string         `json:"network"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// SupportedResponse is the body of GET /supported.
type SupportedResponse struct {
	Kinds []SupportedKind `json:"kinds"`
}

// DiscoveryEntry records a resource's accepted Challenges for the discovery
// catalog. Keyed by Resource; newest lastUpdated wins on re-register.
type DiscoveryEntry struct {
	Resource    string         `json:"resource"`
	Type        string         `json:"type"`
	Accepts     []Challenge    `json:"accepts"`
	LastUpdated int64          `json:"lastUpdated"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// MarshalCanonical serializes v as compact JSON with sorted map keys where
// Go's encoding/json already guarantees deterministic struct field order;
// it exists so every encoder in this module goes through one call site.
func MarshalCanonical(v any) ([]byte, error) {
	return json.Marshal(v)
}
