// Package encoding implements the base64(JSON) wire codecs for x402
// headers: the X-Payment request header and the X-Payment-Response
// response header, plus the 402 challenge body.
package encoding

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/stellar-x402/x402-go"
)

// EncodePayload converts a Payload into the base64(JSON) form carried by
// the X-Payment header.
func EncodePayload(p x402.Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodePayload reverses EncodePayload. A malformed base64 body or a body
// that doesn't parse as JSON both surface as ErrMalformedHeader-wrapped
// errors so callers can map them to a 402 invalid_payload response.
func DecodePayload(encoded string) (x402.Payload, error) {
	var p x402.Payload
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return p, fmt.Errorf("%w: %v", x402.ErrMalformedHeader, err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", x402.ErrMalformedHeader, err)
	}
	return p, nil
}

// EncodeSettlementHeader converts a SettlementHeader into the base64(JSON)
// form carried by the X-Payment-Response header.
func EncodeSettlementHeader(h x402.SettlementHeader) (string, error) {
	raw, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("marshal settlement header: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeSettlementHeader reverses EncodeSettlementHeader.
func DecodeSettlementHeader(encoded string) (x402.SettlementHeader, error) {
	var h x402.SettlementHeader
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return h, fmt.Errorf("decode settlement header: %w", err)
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return h, fmt.Errorf("unmarshal settlement header: %w", err)
	}
	return h, nil
}

// EncodeChallengeResponse renders the JSON body of a 402 response. It is
// never base64-wrapped; only the headers are.
func EncodeChallengeResponse(r x402.ChallengeResponse) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal challenge response: %w", err)
	}
	return raw, nil
}
