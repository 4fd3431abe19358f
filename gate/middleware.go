package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	x402 "github.com/stellar-x402/x402-go"
	"github.com/stellar-x402/x402-go/encoding"
	"github.com/stellar-x402/x402-go/facilitator"
)

// contextKey avoids collisions with context keys set by other middleware.
type contextKey string

// VerifyResultContextKey is the context key a protected handler can use to
// read the VerifyResult the gate obtained for the current request.
const VerifyResultContextKey = contextKey("x402_verify_result")

// Config is the process-wide configuration a Gate needs: where to send
// payments, which facilitator(s) to verify/settle through, and the route
// table that decides which requests are gated.
type Config struct {
	// Facilitator is the primary facilitator the gate calls.
	Facilitator facilitator.Interface
	// FallbackFacilitator, if set, is tried when Facilitator's Verify or
	// Settle call fails with a transport error.
	FallbackFacilitator facilitator.Interface
	// Rules is the compiled route table; a request matching no rule passes
	// through unguarded.
	Rules *Table
	// Network is the network tag stamped onto every Challenge this gate
	// produces.
	Network string
	// PayTo is the default receiver account for rules that don't override it.
	PayTo string
	// VerifyOnly, when true, skips settlement: a verified payload releases
	// the handler's response immediately with no X-Payment-Response header.
	VerifyOnly bool
	// Logger receives structured diagnostics; nil uses slog.Default().
	Logger *slog.Logger
}

// Gate is the http.Handler-wrapping middleware that enforces payment on
// routes in its Config's Rules table.
type Gate struct {
	cfg Config
}

// New builds a Gate from cfg.
func New(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

func (g *Gate) logger() *slog.Logger {
	if g.cfg.Logger != nil {
		return g.cfg.Logger
	}
	return slog.Default()
}

// Wrap returns the http.Handler middleware form of the gate, suitable for
// composing with any router that accepts func(http.Handler) http.Handler
// (net/http's ServeMux, chi, or gin via gin.WrapH/WrapF).
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.serve(w, r, next)
	})
}

func (g *Gate) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rule, ok := g.cfg.Rules.Match(r.Method, r.RequestURI)
	if !ok {
		next.ServeHTTP(w, r)
		return
	}

	challenge, err := g.buildChallenge(rule, r)
	if err != nil {
		g.logger().Error("resolve route price", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Idle -> Challenged: no X-Payment header present.
	header := r.Header.Get("X-Payment")
	if header == "" {
		g.respond402(w, r, []x402.Challenge{challenge}, "")
		return
	}

	// Challenged -> Verifying: decode the header.
	payload, err := encoding.DecodePayload(header)
	if err != nil {
		g.logger().Warn("malformed X-Payment header", "path", r.URL.Path, "error", err)
		g.respond402(w, r, []x402.Challenge{challenge}, x402.ReasonInvalidPayload.String())
		return
	}

	verifyResult, err := g.verify(r.Context(), payload, challenge)
	if err != nil {
		g.logger().Error("facilitator verify transport failure", "path", r.URL.Path, "error", err)
		http.Error(w, "payment verification unavailable", http.StatusInternalServerError)
		return
	}

	// Verifying -> Rejected402: invalid payload or facilitator says no.
	if !verifyResult.IsValid {
		g.logger().Warn("payment rejected", "path", r.URL.Path, "reason", verifyResult.InvalidReason)
		g.respond402(w, r, []x402.Challenge{challenge}, verifyResult.InvalidReason)
		return
	}

	// Verifying -> Handling: wrap the response sink; settlement is decided
	// at the moment the handler first commits a response.
	ctx := context.WithValue(r.Context(), VerifyResultContextKey, verifyResult)
	r = r.WithContext(ctx)

	interceptor := &responseInterceptor{
		w: w,
		onSuccess: func() bool {
			return g.settle(w, r, payload, challenge)
		},
		onFailure: func(statusCode int) {
			g.logger().Info("handler failed, skipping settlement", "path", r.URL.Path, "status", statusCode)
		},
	}
	next.ServeHTTP(interceptor, r)
}

// verify calls the primary facilitator, falling back to the secondary one
// only on a transport error (never on a negative verification result).
func (g *Gate) verify(ctx context.Context, payload x402.Payload, challenge x402.Challenge) (x402.VerifyResult, error) {
	result, err := g.cfg.Facilitator.Verify(ctx, payload, challenge)
	if err != nil && g.cfg.FallbackFacilitator != nil {
		g.logger().Warn("primary facilitator verify failed, trying fallback", "error", err)
		result, err = g.cfg.FallbackFacilitator.Verify(ctx, payload, challenge)
	}
	return result, err
}

// settle runs the Settling state: HandlerSucceeded -> Settling -> Paid or
// SettleFailed. It writes the terminal response itself (the X-Payment-Response
// header on success, a fresh 402 on failure) and reports whether the
// handler's own buffered response may proceed.
func (g *Gate) settle(w http.ResponseWriter, r *http.Request, payload x402.Payload, challenge x402.Challenge) bool {
	if g.cfg.VerifyOnly {
		return true
	}

	result, err := g.cfg.Facilitator.Settle(r.Context(), payload, challenge)
	if err != nil && g.cfg.FallbackFacilitator != nil {
		g.logger().Warn("primary facilitator settle failed, trying fallback", "error", err)
		result, err = g.cfg.FallbackFacilitator.Settle(r.Context(), payload, challenge)
	}
	if err != nil {
		g.logger().Error("settlement transport failure", "path", r.URL.Path, "error", err)
		http.Error(w, "payment settlement unavailable", http.StatusInternalServerError)
		return false
	}

	if !result.Success {
		g.logger().Warn("settlement failed", "path", r.URL.Path, "reason", result.ErrorReason)
		g.respond402(w, r, []x402.Challenge{challenge}, result.ErrorReason)
		return false
	}

	headerValue, err := encoding.EncodeSettlementHeader(x402.SettlementHeader{
		Success:     true,
		Transaction: result.Transaction,
		Network:     result.Network,
		Payer:       result.Payer,
	})
	if err != nil {
		g.logger().Warn("encode X-Payment-Response header", "error", err)
		return true
	}
	w.Header().Set("X-Payment-Response", headerValue)
	return true
}

// buildChallenge resolves a matched RouteRule into the Challenge this
// request's 402 (or verify call) will carry.
func (g *Gate) buildChallenge(rule RouteRule, r *http.Request) (x402.Challenge, error) {
	amount, err := ResolveAmount(rule)
	if err != nil {
		return x402.Challenge{}, err
	}
	payTo := rule.PayTo
	if payTo == "" {
		payTo = g.cfg.PayTo
	}
	description := rule.Description
	if description == "" {
		description = "Payment required for " + r.URL.Path
	}
	return x402.Challenge{
		Scheme:            x402.SchemeExact,
		Network:           g.cfg.Network,
		MaxAmountRequired: amount,
		Resource:          resourceURL(r),
		Description:       description,
		MimeType:          rule.MimeType,
		PayTo:             payTo,
		MaxTimeoutSeconds: ResolveTimeoutSeconds(rule),
		Asset:             ResolveAsset(rule),
	}, nil
}

func resourceURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// respond402 writes the JSON 402 challenge body. errorReason is omitted
// when empty (the initial unpaid-request challenge carries none).
func (g *Gate) respond402(w http.ResponseWriter, r *http.Request, accepts []x402.Challenge, errorReason string) {
	if errorReason == "" {
		errorReason = "Payment Required"
	}
	body, err := encoding.EncodeChallengeResponse(x402.ChallengeResponse{
		X402Version: x402.X402Version,
		Error:       errorReason,
		Accepts:     accepts,
	})
	if err != nil {
		g.logger().Error("encode challenge response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	w.Write(body)
}

// IsBrowserRequest reports whether r looks like a browser navigation (an
// Accept header requesting HTML from a user-agent that names a known
// browser engine), the signal this package's paywall-rendering caller uses
// to decide between an HTML paywall and the JSON challenge body.
func IsBrowserRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if !strings.Contains(accept, "text/html") {
		return false
	}
	ua := strings.ToLower(r.Header.Get("User-Agent"))
	for _, marker := range []string{"mozilla", "chrome", "safari", "webkit", "gecko"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
