package facilitator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stellar-x402/x402-go"
)

func TestServerVerifyAndSettleRoundTrip(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(NewServer(h.service, nil).Handler())
	defer srv.Close()

	reqBody := x402.VerifyRequest{
		X402Version:         x402.X402Version,
		PaymentPayload:      h.payload("hsrv1", "10000000", 2000),
		PaymentRequirements: h.challenge(),
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	verifyResp, err := http.Post(srv.URL+"/verify", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post /verify: %v", err)
	}
	defer verifyResp.Body.Close()
	if verifyResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", verifyResp.StatusCode)
	}
	var verifyResult x402.VerifyResult
	if err := json.NewDecoder(verifyResp.Body).Decode(&verifyResult); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if !verifyResult.IsValid {
		t.Fatalf("expected valid, got reason %q", verifyResult.InvalidReason)
	}

	settleResp, err := http.Post(srv.URL+"/settle", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post /settle: %v", err)
	}
	defer settleResp.Body.Close()
	var settleResult x402.SettleResult
	if err := json.NewDecoder(settleResp.Body).Decode(&settleResult); err != nil {
		t.Fatalf("decode settle response: %v", err)
	}
	if !settleResult.Success {
		t.Fatalf("expected settle success, got reason %q", settleResult.ErrorReason)
	}
}

func TestServerSupported(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(NewServer(h.service, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/supported")
	if err != nil {
		t.Fatalf("get /supported: %v", err)
	}
	defer resp.Body.Close()
	var supported x402.SupportedResponse
	if err := json.NewDecoder(resp.Body).Decode(&supported); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(supported.Kinds) != 2 {
		t.Fatalf("expected 2 kinds, got %d", len(supported.Kinds))
	}
}

func TestServerDiscoveryLifecycle(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(NewServer(h.service, nil).Handler())
	defer srv.Close()

	entry := x402.DiscoveryEntry{
		Resource:    h.resource,
		Type:        "http",
		LastUpdated: 7,
		Accepts:     []x402.Challenge{h.challenge()},
	}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}

	registerResp, err := http.Post(srv.URL+"/discovery/resources", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post discovery: %v", err)
	}
	registerResp.Body.Close()
	if registerResp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", registerResp.StatusCode)
	}

	listResp, err := http.Get(srv.URL + "/discovery/resources")
	if err != nil {
		t.Fatalf("get discovery: %v", err)
	}
	defer listResp.Body.Close()
	var page struct {
		Items []x402.DiscoveryEntry `json:"items"`
		Total int                   `json:"total"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected total 1, got %d", page.Total)
	}

	delBody, err := json.Marshal(struct {
		Resource string `json:"resource"`
	}{Resource: entry.Resource})
	if err != nil {
		t.Fatalf("marshal delete body: %v", err)
	}
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/discovery/resources", bytes.NewReader(delBody))
	if err != nil {
		t.Fatalf("new delete request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete discovery: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", delResp.StatusCode)
	}
}
