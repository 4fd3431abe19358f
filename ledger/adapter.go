// Package ledger defines a narrow capability interface over the Stellar SDK
// (account lookup, ledger sequence, transaction parse/hash/submit, fee-bump
// wrap, and contract-call assembly), so the facilitator package and
// client.Builder never import github.com/stellar/go directly.
package ledger

import (
	"context"
	"math/big"
)

// TrustLine describes a non-native asset balance on an account.
type TrustLine struct {
	Asset     string // contract id for contract assets
	Balance   *big.Int
	Authorized bool
}

// Account is the subset of Horizon account state the facilitator needs:
// the sequence number (for building transactions) and balances (for the
// source-account solvency check).
type Account struct {
	AccountID      string
	Sequence       int64
	NativeBalance  *big.Int
	TrustLines     []TrustLine
}

// TrustLineFor returns the trust line for asset, if present.
func (a Account) TrustLineFor(asset string) (TrustLine, bool) {
	for _, tl := range a.TrustLines {
		if tl.Asset == asset {
			return tl, true
		}
	}
	return TrustLine{}, false
}

// SubmitOutcome is the result of submitting a transaction to the ledger.
type SubmitOutcome struct {
	Hash      string
	Successful bool
	// LedgerSequence is the ledger the transaction was included in.
	LedgerSequence uint32
	ResultXDR      string
}

// ParsedTransaction is the adapter's ledger-agnostic view of a decoded
// transaction envelope, exposing only the fields verification needs.
type ParsedTransaction struct {
	Hash             string
	SourceAccount    string
	SequenceNumber   int64
	Operations       []Operation
	TimeBoundsMaxUnix int64 // 0 if unbounded
}

// Operation describes a single payment-relevant operation extracted from a
// parsed transaction. Only payment and contract-invocation operations that
// can satisfy an x402 requirement are surfaced; anything else is ignored by
// the caller (a transaction may carry exactly one payment-relevant
// operation per payload).
type Operation struct {
	Kind        OperationKind
	Destination string
	Asset       string // "native" or a contract id
	Amount      *big.Int
}

// OperationKind enumerates the operation shapes the adapter can recognize.
type OperationKind int

const (
	OperationUnknown OperationKind = iota
	OperationNativePayment
	OperationContractTransfer
)

// ContractTransferParams describes a token contract's transfer(from, to,
// amount:i128) invocation to be assembled by BuildContractTransferXDR.
type ContractTransferParams struct {
	ContractID    string
	From          string
	To            string
	AmountAtomic  *big.Int
}

// FeeBumpParams describes the outer envelope used to sponsor fees without
// touching the inner transaction's signatures.
type FeeBumpParams struct {
	InnerEnvelopeXDR string
	FeeSource        string
	BaseFeeStroops   int64
}

// Adapter is the narrow capability interface the facilitator package and
// client.Builder depend on instead of the Stellar SDK directly.
type Adapter interface {
	// GetAccount loads sequence number, native balance, and trust lines for
	// accountID.
	GetAccount(ctx context.Context, accountID string) (Account, error)

	// CurrentLedgerSequence returns the ledger's current close sequence.
	CurrentLedgerSequence(ctx context.Context) (uint32, error)

	// ParseTransactionXDR decodes a base64 transaction envelope without
	// submitting it, surfacing source account, sequence number, time
	// bounds, and payment-relevant operations.
	ParseTransactionXDR(envelopeXDR string) (ParsedTransaction, error)

	// HashTransactionXDR computes the network-specific transaction hash
	// used as the replay store's key.
	HashTransactionXDR(envelopeXDR string, networkPassphrase string) (string, error)

	// WrapFeeBump builds and signs a fee-bump envelope around an already
	// signed inner transaction, returning the outer envelope's base64 XDR.
	// Only the fee source's signature is added; the inner transaction is
	// unmodified.
	WrapFeeBump(ctx context.Context, params FeeBumpParams, sign func(hash [32]byte) ([]byte, error)) (string, error)

	// SubmitTransaction submits a (possibly fee-bumped) envelope to the
	// ledger and waits for inclusion, bounded by ctx's deadline.
	SubmitTransaction(ctx context.Context, envelopeXDR string) (SubmitOutcome, error)

	// BuildNativePaymentXDR assembles an unsigned native-asset payment
	// transaction envelope ready for client-side
	// signing.
	BuildNativePaymentXDR(ctx context.Context, params NativePaymentParams) (string, error)

	// BuildContractTransferXDR assembles an unsigned contract invocation
	// transaction envelope for a transfer(from, to, amount) call.
	BuildContractTransferXDR(ctx context.Context, params ContractTransferParams, sourceAccount string, sequence int64, timeoutSeconds int) (string, error)

	// SignTransactionXDR computes envelopeXDR's signing hash under
	// networkPassphrase, invokes sign to produce a raw Ed25519 signature,
	// and returns the envelope with that signature attached. Used by the
	// client package's Builder to turn an unsigned envelope from
	// BuildNativePaymentXDR/BuildContractTransferXDR into the signed
	// envelope carried in a Payload.
	SignTransactionXDR(envelopeXDR string, networkPassphrase string, sign func(hash [32]byte) ([]byte, error)) (string, error)
}

// NativePaymentParams describes a native-asset payment transaction to be
// assembled by BuildNativePaymentXDR.
type NativePaymentParams struct {
	SourceAccount  string
	Destination    string
	AmountStroops  *big.Int
	Sequence       int64
	TimeoutSeconds int
}
