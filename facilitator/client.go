package facilitator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stellar-x402/x402-go"
	"github.com/stellar-x402/x402-go/retry"
)

// Client calls a remote facilitator's HTTP surface, implementing Interface
// for a gate that does not run its own Service in-process.
type Client struct {
	BaseURL       string
	HTTPClient    *http.Client
	VerifyTimeout time.Duration
	SettleTimeout time.Duration

	// AuthProvider, when non-nil, mints a short-lived bearer token attached
	// to every request.
	AuthProvider AuthProvider
}

// AuthProvider mints the bearer token Client attaches to outgoing requests.
type AuthProvider interface {
	Token(ctx context.Context) (string, error)
}

// NewClient returns a Client with sensible default timeouts: verification
// is expected to be fast, settlement waits on ledger inclusion.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:       baseURL,
		HTTPClient:    &http.Client{},
		VerifyTimeout: 10 * time.Second,
		SettleTimeout: 30 * time.Second,
	}
}

func (c *Client) Verify(ctx context.Context, payload x402.Payload, requirements x402.Challenge) (x402.VerifyResult, error) {
	var result x402.VerifyResult
	err := c.call(ctx, c.VerifyTimeout, "/verify", x402.VerifyRequest{
		X402Version:         x402.X402Version,
		PaymentPayload:      payload,
		PaymentRequirements: requirements,
	}, &result)
	return result, err
}

func (c *Client) Settle(ctx context.Context, payload x402.Payload, requirements x402.Challenge) (x402.SettleResult, error) {
	var result x402.SettleResult
	err := c.call(ctx, c.SettleTimeout, "/settle", x402.VerifyRequest{
		X402Version:         x402.X402Version,
		PaymentPayload:      payload,
		PaymentRequirements: requirements,
	}, &result)
	return result, err
}

func (c *Client) Supported(ctx context.Context) (x402.SupportedResponse, error) {
	var result x402.SupportedResponse
	err := c.get(ctx, c.VerifyTimeout, "/supported", &result)
	return result, err
}

// call POSTs body to path and decodes the JSON response into out, retrying
// transient transport failures per retry.IsTransportRetryable.
func (c *Client) call(ctx context.Context, timeout time.Duration, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	_, err = retry.WithRetry(ctx, retry.DefaultConfig, retry.IsTransportRetryable, func() (struct{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
		if err != nil {
			return struct{}{}, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if err := c.attachAuth(reqCtx, req); err != nil {
			return struct{}{}, err
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("%w: %v", x402.ErrFacilitatorUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return struct{}{}, &retry.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, fmt.Errorf("decode response: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (c *Client) get(ctx context.Context, timeout time.Duration, path string, out any) error {
	_, err := retry.WithRetry(ctx, retry.DefaultConfig, retry.IsTransportRetryable, func() (struct{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.BaseURL+path, nil)
		if err != nil {
			return struct{}{}, fmt.Errorf("build request: %w", err)
		}
		if err := c.attachAuth(reqCtx, req); err != nil {
			return struct{}{}, err
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("%w: %v", x402.ErrFacilitatorUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return struct{}{}, &retry.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, fmt.Errorf("decode response: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (c *Client) attachAuth(ctx context.Context, req *http.Request) error {
	if c.AuthProvider == nil {
		return nil
	}
	token, err := c.AuthProvider.Token(ctx)
	if err != nil {
		return fmt.Errorf("mint facilitator auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// ServiceTokenProvider mints a short-lived HS256 JWT identifying the calling
// gate to a remote facilitator.
type ServiceTokenProvider struct {
	Secret []byte
	Issuer string
	Expiry time.Duration
}

// NewServiceTokenProvider returns a provider minting tokens with a 60 second
// default lifetime.
func NewServiceTokenProvider(secret []byte, issuer string) *ServiceTokenProvider {
	return &ServiceTokenProvider{Secret: secret, Issuer: issuer, Expiry: 60 * time.Second}
}

func (p *ServiceTokenProvider) Token(ctx context.Context) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    p.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.Expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.Secret)
	if err != nil {
		return "", fmt.Errorf("signing facilitator auth token: %w", err)
	}
	return signed, nil
}
