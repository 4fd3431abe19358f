package encoding

import (
	"encoding/base64"
	"testing"

	"github.com/stellar-x402/x402-go"
)

func TestPayloadRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload x402.Payload
	}{
		{
			name: "native asset payload",
			payload: x402.Payload{
				X402Version:      1,
				Scheme:           "exact",
				Network:          "stellar-testnet",
				SignedTxXdr:      "AAAAAgAAAAA=",
				SourceAccount:    "GSOURCE",
				Amount:           "10000000",
				Destination:      "GDEST",
				Asset:            "native",
				ValidUntilLedger: 555,
				Nonce:            "3fae1c02-1111-4b9a-9a1a-000000000000",
			},
		},
		{
			name: "contract asset payload",
			payload: x402.Payload{
				X402Version:   1,
				Scheme:        "exact",
				Network:       "stellar",
				SignedTxXdr:   "AAAAAgAAAAE=",
				SourceAccount: "GSOURCE",
				Amount:        "500000",
				Destination:   "GDEST",
				Asset:         "CCONTRACTID",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodePayload(tt.payload)
			if err != nil {
				t.Fatalf("EncodePayload: %v", err)
			}
			if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
				t.Fatalf("encoded value is not valid base64: %v", err)
			}

			decoded, err := DecodePayload(encoded)
			if err != nil {
				t.Fatalf("DecodePayload: %v", err)
			}
			if decoded != tt.payload {
				t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, tt.payload)
			}
		})
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "invalid base64", encoded: "not-valid-base64!!!"},
		{name: "invalid JSON", encoded: base64.StdEncoding.EncodeToString([]byte(`{not json`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePayload(tt.encoded); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestSettlementHeaderRoundTrip(t *testing.T) {
	h := x402.SettlementHeader{
		Success:     true,
		Transaction: "deadbeefcafe",
		Network:     "stellar-testnet",
		Payer:       "GSOURCE",
	}
	encoded, err := EncodeSettlementHeader(h)
	if err != nil {
		t.Fatalf("EncodeSettlementHeader: %v", err)
	}
	decoded, err := DecodeSettlementHeader(encoded)
	if err != nil {
		t.Fatalf("DecodeSettlementHeader: %v", err)
	}
	if decoded != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, h)
	}
}

func TestEncodeChallengeResponse(t *testing.T) {
	resp := x402.ChallengeResponse{
		X402Version: 1,
		Error:       "Payment Required",
		Accepts: []x402.Challenge{{
			Scheme:            "exact",
			Network:           "stellar-testnet",
			MaxAmountRequired: "10000000",
			PayTo:             "GDEST",
			MaxTimeoutSeconds: 300,
			Asset:             "native",
		}},
	}
	raw, err := EncodeChallengeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeChallengeResponse: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected non-empty body")
	}
}
