package x402

import "errors"

// Sentinel errors for internal control flow. The wire-level reason codes
// exchanged with callers are the InvalidReason/ErrorReason string constants
// below; these sentinels let Go code use errors.Is/errors.As without string
// comparisons.
var (
	ErrPaymentRequired              = errors.New("payment required")
	ErrMalformedHeader              = errors.New("malformed payment header")
	ErrNoMatchingRequirement        = errors.New("no requirement matches payload")
	ErrFacilitatorUnavailable       = errors.New("facilitator unavailable")
	ErrSignerCancelled              = errors.New("signer cancelled")
	ErrReplayStoreUnavailable       = errors.New("replay store unavailable")
	ErrProductionFallbackDisallowed = errors.New("in-memory replay store disallowed in production")

	ErrUnsupportedScheme  = errors.New(string(ReasonUnsupportedScheme))
	ErrUnsupportedVersion = errors.New(string(ReasonInvalidX402Version))
	ErrNetworkMismatch    = errors.New(string(ReasonNetworkMismatch))
	ErrDestinationMismatch = errors.New(string(ReasonDestinationMismatch))
	ErrAssetMismatch      = errors.New(string(ReasonAssetMismatch))
	ErrAmountMismatch     = errors.New(string(ReasonAmountMismatch))
	ErrTransactionExpired = errors.New(string(ReasonTransactionExpired))
	ErrTransactionAlreadyUsed = errors.New(string(ReasonTransactionAlreadyUsed))
	ErrInvalidXDR         = errors.New(string(ReasonInvalidXDR))
)

// InvalidReason is a closed enumeration of reasons a Payload fails
// verification, carried on the wire as VerifyResult.InvalidReason and
// SettleResult.ErrorReason.
type InvalidReason string

const (
	ReasonInsufficientFunds        InvalidReason = "insufficient_funds"
	ReasonInvalidNetwork           InvalidReason = "invalid_network"
	ReasonInvalidPayload           InvalidReason = "invalid_payload"
	ReasonInvalidPaymentReqs       InvalidReason = "invalid_payment_requirements"
	ReasonInvalidScheme            InvalidReason = "invalid_scheme"
	ReasonInvalidPayment           InvalidReason = "invalid_payment"
	ReasonPaymentExpired           InvalidReason = "payment_expired"
	ReasonUnsupportedScheme        InvalidReason = "unsupported_scheme"
	ReasonInvalidX402Version       InvalidReason = "invalid_x402_version"
	ReasonInvalidTransactionState  InvalidReason = "invalid_transaction_state"
	ReasonUnexpectedVerifyError    InvalidReason = "unexpected_verify_error"
	ReasonUnexpectedSettleError    InvalidReason = "unexpected_settle_error"

	ReasonMissingSignedTx        InvalidReason = "invalid_exact_stellar_payload_missing_signed_tx"
	ReasonInvalidXDR             InvalidReason = "invalid_exact_stellar_payload_invalid_xdr"
	ReasonSourceAccountNotFound  InvalidReason = "invalid_exact_stellar_payload_source_account_not_found"
	ReasonInsufficientBalance    InvalidReason = "invalid_exact_stellar_payload_insufficient_balance"
	ReasonAmountMismatch         InvalidReason = "invalid_exact_stellar_payload_amount_mismatch"
	ReasonDestinationMismatch    InvalidReason = "invalid_exact_stellar_payload_destination_mismatch"
	ReasonAssetMismatch          InvalidReason = "invalid_exact_stellar_payload_asset_mismatch"
	ReasonNetworkMismatch        InvalidReason = "invalid_exact_stellar_payload_network_mismatch"
	ReasonMissingRequiredFields  InvalidReason = "invalid_exact_stellar_payload_missing_required_fields"
	ReasonTransactionExpired     InvalidReason = "invalid_exact_stellar_payload_transaction_expired"
	ReasonTransactionAlreadyUsed InvalidReason = "invalid_exact_stellar_payload_transaction_already_used"

	ReasonTransactionFailed InvalidReason = "invalid_exact_stellar_payload_transaction_failed"
	ReasonFeeBumpFailed     InvalidReason = "invalid_exact_stellar_payload_fee_bump_failed"
)

// String implements fmt.Stringer so reasons print cleanly in logs.
func (r InvalidReason) String() string { return string(r) }
