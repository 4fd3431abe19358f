package facilitator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/stellar-x402/x402-go"
	"github.com/stellar-x402/x402-go/discovery"
	"github.com/stellar-x402/x402-go/ledger"
	"github.com/stellar-x402/x402-go/replay"
	"github.com/stellar-x402/x402-go/retry"
	"github.com/stellar-x402/x402-go/validation"
)

// Service is the facilitator's in-process implementation of Interface,
// grounded on the direct-to-chain settle flow: verify locally, submit
// straight to the ledger, never touch a second-party network.
type Service struct {
	Ledger    ledger.Adapter
	Replay    replay.Store
	Discovery discovery.Store

	// FeeSigner, when non-nil, wraps native-asset settlements in a
	// fee-bump envelope it signs. A nil FeeSigner
	// means the caller's transaction is submitted as-is.
	FeeSigner FeeSigner

	Logger *slog.Logger
}

// FeeSigner lets the facilitator sponsor submission fees for native-asset
// settlements without touching the inner transaction's signatures.
type FeeSigner interface {
	AccountID() string
	Sign(hash [32]byte) ([]byte, error)
}

// NewService wires a Service from its collaborators; Logger defaults to
// slog.Default() if nil.
func NewService(adapter ledger.Adapter, replayStore replay.Store, discoveryStore discovery.Store, feeSigner FeeSigner) *Service {
	return &Service{
		Ledger:    adapter,
		Replay:    replayStore,
		Discovery: discoveryStore,
		FeeSigner: feeSigner,
		Logger:    slog.Default(),
	}
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Verify runs a pure, repeatable check of payload against requirements and
// the ledger's current state, with no side effects.
func (s *Service) Verify(ctx context.Context, payload x402.Payload, requirements x402.Challenge) (x402.VerifyResult, error) {
	if err := validation.ValidatePayload(payload); err != nil {
		return invalid(x402.ReasonInvalidPayload), nil
	}
	if err := validation.ValidateChallenge(requirements); err != nil {
		return invalid(x402.ReasonInvalidPaymentReqs), nil
	}
	if err := validation.MatchesChallenge(payload, requirements); err != nil {
		return invalid(reasonFor(err, x402.ReasonInvalidPayment)), nil
	}

	parsed, err := s.Ledger.ParseTransactionXDR(payload.SignedTxXdr)
	if err != nil {
		return invalid(x402.ReasonInvalidXDR), nil
	}

	op, err := singlePaymentOperation(parsed, requirements)
	if err != nil {
		return invalid(reasonFor(err, x402.ReasonMissingRequiredFields)), nil
	}

	account, err := s.Ledger.GetAccount(ctx, parsed.SourceAccount)
	if err != nil {
		return invalid(x402.ReasonSourceAccountNotFound), nil
	}
	if err := checkSolvency(account, op); err != nil {
		return invalid(reasonFor(err, x402.ReasonInsufficientBalance)), nil
	}

	currentLedger, err := s.Ledger.CurrentLedgerSequence(ctx)
	if err != nil {
		s.logger().Error("load current ledger sequence", "error", err)
		return x402.VerifyResult{}, fmt.Errorf("%w: %v", x402.ErrFacilitatorUnavailable, err)
	}
	if uint32(payload.ValidUntilLedger) < currentLedger {
		return invalid(x402.ReasonTransactionExpired), nil
	}
	if parsed.TimeBoundsMaxUnix != 0 && time.Now().Unix() > parsed.TimeBoundsMaxUnix {
		return invalid(x402.ReasonTransactionExpired), nil
	}

	hash, err := s.Ledger.HashTransactionXDR(payload.SignedTxXdr, networkPassphrase(payload.Network))
	if err != nil {
		return invalid(x402.ReasonInvalidXDR), nil
	}
	if rec, ok, err := s.Replay.Get(ctx, hash); err == nil && ok && rec.Status == replay.StatusSettled {
		return invalid(x402.ReasonTransactionAlreadyUsed), nil
	}

	return x402.VerifyResult{IsValid: true, Payer: parsed.SourceAccount}, nil
}

// Settle re-verifies, claims the hash exactly once, submits, and persists
// the terminal result before returning.
func (s *Service) Settle(ctx context.Context, payload x402.Payload, requirements x402.Challenge) (x402.SettleResult, error) {
	// The idempotent check runs before Verify, whose own replay check would
	// otherwise report a settled hash as ReasonTransactionAlreadyUsed and
	// mask the terminal result a repeat settle call should return instead.
	hash, err := s.Ledger.HashTransactionXDR(payload.SignedTxXdr, networkPassphrase(payload.Network))
	if err != nil {
		return x402.SettleResult{Success: false, ErrorReason: x402.ReasonInvalidXDR.String(), Network: requirements.Network}, nil
	}
	if rec, ok, err := s.Replay.Get(ctx, hash); err == nil && ok && rec.Status == replay.StatusSettled {
		return rec.Result, nil
	}

	verifyResult, err := s.Verify(ctx, payload, requirements)
	if err != nil {
		return x402.SettleResult{}, err
	}
	if !verifyResult.IsValid {
		// A concurrent settle call may have resolved this hash between the
		// idempotent check above and Verify's own replay check.
		if verifyResult.InvalidReason == x402.ReasonTransactionAlreadyUsed.String() {
			if rec, ok, err := s.Replay.Get(ctx, hash); err == nil && ok && rec.Status == replay.StatusSettled {
				return rec.Result, nil
			}
		}
		return x402.SettleResult{Success: false, ErrorReason: verifyResult.InvalidReason, Network: requirements.Network}, nil
	}

	if err := s.Replay.Claim(ctx, hash); err != nil {
		// Another settle call is already in flight or has finished for
		// this hash; poll until it resolves rather than racing it.
		return s.awaitResolution(ctx, hash, requirements)
	}

	result, submitErr := s.submitAndResolve(ctx, payload, requirements, hash)
	if submitErr != nil {
		if releaseErr := s.Replay.Release(ctx, hash); releaseErr != nil {
			s.logger().Warn("release pending replay marker after submit failure", "hash", hash, "error", releaseErr)
		}
		s.logger().Error("settlement submit failed", "hash", hash, "error", submitErr)
		reason := x402.ReasonTransactionFailed
		if errors.Is(submitErr, errFeeBumpFailedSentinel) {
			reason = x402.ReasonFeeBumpFailed
		}
		return x402.SettleResult{Success: false, ErrorReason: reason.String(), Network: requirements.Network}, nil
	}
	return result, nil
}

func (s *Service) submitAndResolve(ctx context.Context, payload x402.Payload, requirements x402.Challenge, hash string) (x402.SettleResult, error) {
	envelope := payload.SignedTxXdr
	if payload.Asset == x402.AssetNative && s.FeeSigner != nil {
		wrapped, err := s.Ledger.WrapFeeBump(ctx, ledger.FeeBumpParams{
			InnerEnvelopeXDR: envelope,
			FeeSource:        s.FeeSigner.AccountID(),
			BaseFeeStroops:   100,
		}, s.FeeSigner.Sign)
		if err != nil {
			return x402.SettleResult{}, fmt.Errorf("%w: %v", errFeeBumpFailedSentinel, err)
		}
		envelope = wrapped
	}

	outcome, err := s.Ledger.SubmitTransaction(ctx, envelope)
	if err != nil {
		return x402.SettleResult{}, err
	}
	if !outcome.Successful {
		return x402.SettleResult{}, fmt.Errorf("%s", x402.ReasonTransactionFailed)
	}

	result := x402.SettleResult{
		Success:     true,
		Payer:       payload.SourceAccount,
		Transaction: outcome.Hash,
		Network:     requirements.Network,
	}
	if err := s.Replay.Resolve(ctx, hash, result); err != nil {
		s.logger().Error("persist settled replay record", "hash", hash, "error", err)
	}
	return result, nil
}

// awaitResolution polls the replay store for a hash another goroutine is
// settling, so concurrent settlements of the same hash result in exactly
// one ledger submission.
func (s *Service) awaitResolution(ctx context.Context, hash string, requirements x402.Challenge) (x402.SettleResult, error) {
	pollCfg := retry.PollConfig(x402.TimeoutOrDefault(requirements.MaxTimeoutSeconds))
	result, err := retry.WithRetry(ctx, pollCfg, func(error) bool { return true }, func() (x402.SettleResult, error) {
		rec, ok, err := s.Replay.Get(ctx, hash)
		if err != nil {
			return x402.SettleResult{}, err
		}
		if ok && rec.Status == replay.StatusSettled {
			return rec.Result, nil
		}
		return x402.SettleResult{}, fmt.Errorf("settlement still pending")
	})
	if err != nil {
		return x402.SettleResult{Success: false, ErrorReason: x402.ReasonUnexpectedSettleError.String(), Network: requirements.Network}, nil
	}
	return result, nil
}

// Supported enumerates the static {exact} x {stellar, stellar-testnet}
// matrix.
func (s *Service) Supported(ctx context.Context) (x402.SupportedResponse, error) {
	kinds := make([]x402.SupportedKind, 0, len(x402.SupportedNetworks()))
	for _, tag := range x402.SupportedNetworks() {
		info, _ := x402.LookupNetwork(tag)
		kinds = append(kinds, x402.SupportedKind{
			Scheme:  x402.SchemeExact,
			Network: tag,
			Extra: map[string]any{
				"feeSponsorship": info.FeeSponsorship,
			},
		})
	}
	return x402.SupportedResponse{Kinds: kinds}, nil
}

// ListResources, RegisterResource, and UnregisterResource expose the
// discovery catalog on top of Service.Discovery. typeFilter, when non-empty,
// restricts ListResources to entries of that DiscoveryEntry.Type.
func (s *Service) ListResources(ctx context.Context, typeFilter string, offset, limit int) (discovery.Page, error) {
	return s.Discovery.List(ctx, typeFilter, offset, limit)
}

func (s *Service) RegisterResource(ctx context.Context, entry x402.DiscoveryEntry) error {
	return s.Discovery.Register(ctx, entry)
}

func (s *Service) UnregisterResource(ctx context.Context, resource string) error {
	return s.Discovery.Unregister(ctx, resource)
}

func (s *Service) GetResource(ctx context.Context, resource string) (x402.DiscoveryEntry, bool, error) {
	return s.Discovery.Get(ctx, resource)
}

func invalid(reason x402.InvalidReason) x402.VerifyResult {
	return x402.VerifyResult{IsValid: false, InvalidReason: reason.String()}
}

// reasonFor maps err to its closed-enum InvalidReason via sentinel matching,
// never by echoing err.Error() onto the wire: upstream errors are often
// wrapped with extra context (field-name prefixes, nested %v text) that
// would otherwise leak as an unrecognized reason string.
func reasonFor(err error, fallback x402.InvalidReason) x402.InvalidReason {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, x402.ErrNetworkMismatch):
		return x402.ReasonNetworkMismatch
	case errors.Is(err, x402.ErrDestinationMismatch):
		return x402.ReasonDestinationMismatch
	case errors.Is(err, x402.ErrAssetMismatch):
		return x402.ReasonAssetMismatch
	case errors.Is(err, x402.ErrAmountMismatch):
		return x402.ReasonAmountMismatch
	case errors.Is(err, x402.ErrTransactionExpired):
		return x402.ReasonTransactionExpired
	case errors.Is(err, x402.ErrTransactionAlreadyUsed):
		return x402.ReasonTransactionAlreadyUsed
	case errors.Is(err, x402.ErrInvalidXDR):
		return x402.ReasonInvalidXDR
	default:
		if reason := x402.InvalidReason(err.Error()); knownReason(reason) {
			return reason
		}
		return fallback
	}
}

// knownReason reports whether r is one of singlePaymentOperation's or
// checkSolvency's bare reason-string errors, the one case where the error
// text itself is already a closed-enum value safe to surface verbatim.
func knownReason(r x402.InvalidReason) bool {
	switch r {
	case x402.ReasonMissingRequiredFields,
		x402.ReasonDestinationMismatch,
		x402.ReasonAssetMismatch,
		x402.ReasonInvalidPaymentReqs,
		x402.ReasonAmountMismatch,
		x402.ReasonInsufficientBalance:
		return true
	default:
		return false
	}
}

// errFeeBumpFailedSentinel marks a submission failure as originating in the
// fee-bump wrap step, so Settle can report ReasonFeeBumpFailed instead of the
// generic ReasonTransactionFailed without reconstructing reason text from an
// arbitrary adapter error.
var errFeeBumpFailedSentinel = errors.New(x402.ReasonFeeBumpFailed.String())

func networkPassphrase(tag string) string {
	info, err := x402.LookupNetwork(tag)
	if err != nil {
		return ""
	}
	return info.Passphrase
}

// singlePaymentOperation extracts the one payment-relevant operation from a
// parsed transaction and checks it matches requirements' destination,
// amount, and asset.
func singlePaymentOperation(parsed ledger.ParsedTransaction, requirements x402.Challenge) (ledger.Operation, error) {
	if len(parsed.Operations) != 1 {
		return ledger.Operation{}, fmt.Errorf("%s", x402.ReasonMissingRequiredFields)
	}
	op := parsed.Operations[0]
	if op.Destination != requirements.PayTo {
		return ledger.Operation{}, fmt.Errorf("%s", x402.ReasonDestinationMismatch)
	}
	if op.Asset != requirements.Asset {
		return ledger.Operation{}, fmt.Errorf("%s", x402.ReasonAssetMismatch)
	}
	required, ok := new(big.Int).SetString(requirements.MaxAmountRequired, 10)
	if !ok {
		return ledger.Operation{}, fmt.Errorf("%s", x402.ReasonInvalidPaymentReqs)
	}
	if op.Amount.Cmp(required) < 0 {
		return ledger.Operation{}, fmt.Errorf("%s", x402.ReasonAmountMismatch)
	}
	return op, nil
}

func checkSolvency(account ledger.Account, op ledger.Operation) error {
	if op.Asset == x402.AssetNative {
		if account.NativeBalance.Cmp(op.Amount) < 0 {
			return fmt.Errorf("%s", x402.ReasonInsufficientBalance)
		}
		return nil
	}
	tl, ok := account.TrustLineFor(op.Asset)
	if !ok || !tl.Authorized {
		return fmt.Errorf("%s", x402.ReasonMissingRequiredFields)
	}
	if tl.Balance.Cmp(op.Amount) < 0 {
		return fmt.Errorf("%s", x402.ReasonInsufficientBalance)
	}
	return nil
}
