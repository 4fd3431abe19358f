package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// StellarAdapter implements Adapter against a live Horizon instance plus a
// Soroban RPC sub-client for contract transactions. It is the production
// collaborator behind facilitator.Service and client.Builder.
type StellarAdapter struct {
	Horizon           *horizonclient.Client
	Soroban           *SorobanClient
	NetworkPassphrase string
}

// NewStellarAdapter builds an adapter targeting horizonURL/sorobanRPCURL
// under the given network passphrase.
func NewStellarAdapter(horizonURL, sorobanRPCURL, networkPassphrase string) *StellarAdapter {
	return &StellarAdapter{
		Horizon: &horizonclient.Client{
			HorizonURL: horizonURL,
		},
		Soroban:           NewSorobanClient(sorobanRPCURL),
		NetworkPassphrase: networkPassphrase,
	}
}

func (a *StellarAdapter) GetAccount(ctx context.Context, accountID string) (Account, error) {
	req := horizonclient.AccountRequest{AccountID: accountID}
	resp, err := a.Horizon.AccountDetail(req)
	if err != nil {
		return Account{}, fmt.Errorf("load account %s: %w", accountID, err)
	}

	seq, err := resp.GetSequenceNumber()
	if err != nil {
		return Account{}, fmt.Errorf("parse sequence number: %w", err)
	}

	out := Account{AccountID: accountID, Sequence: seq}
	for _, bal := range resp.Balances {
		if bal.Asset.Type == "native" {
			out.NativeBalance = decimalStringToStroops(bal.Balance)
			continue
		}
		out.TrustLines = append(out.TrustLines, TrustLine{
			Asset:      bal.Asset.Issuer,
			Balance:    decimalStringToStroops(bal.Balance),
			Authorized: bal.IsAuthorized(),
		})
	}
	if out.NativeBalance == nil {
		out.NativeBalance = big.NewInt(0)
	}
	return out, nil
}

func (a *StellarAdapter) CurrentLedgerSequence(ctx context.Context) (uint32, error) {
	root, err := a.Horizon.Root()
	if err != nil {
		return 0, fmt.Errorf("load horizon root: %w", err)
	}
	return uint32(root.HorizonSequence), nil
}

// ParseTransactionXDR surfaces payment operations with their destination,
// asset and amount. A contract invocation is surfaced as an
// OperationContractTransfer with only Kind set: its transfer arguments are
// not decoded, so it carries no Destination, Asset or Amount.
func (a *StellarAdapter) ParseTransactionXDR(envelopeXDR string) (ParsedTransaction, error) {
	genericTx, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return ParsedTransaction{}, fmt.Errorf("%w: %v", errInvalidXDR, err)
	}
	tx, ok := genericTx.Transaction()
	if !ok {
		return ParsedTransaction{}, fmt.Errorf("%w: fee-bump or unsupported envelope", errInvalidXDR)
	}

	hash, err := tx.Hash(a.NetworkPassphrase)
	if err != nil {
		return ParsedTransaction{}, fmt.Errorf("hash transaction: %w", err)
	}

	parsed := ParsedTransaction{
		Hash:           fmt.Sprintf("%x", hash),
		SourceAccount:  tx.SourceAccount().AccountID,
		SequenceNumber: tx.SourceAccount().Sequence,
	}
	if tb := tx.Timebounds(); tb.MaxTime != 0 {
		parsed.TimeBoundsMaxUnix = int64(tb.MaxTime)
	}

	for _, op := range tx.Operations() {
		switch o := op.(type) {
		case *txnbuild.Payment:
			amount, err := decimalAmountToStroops(o.Amount)
			if err != nil {
				continue
			}
			asset := "native"
			if !o.Asset.IsNative() {
				asset = o.Asset.StringCanonical()
			}
			parsed.Operations = append(parsed.Operations, Operation{
				Kind:        OperationNativePayment,
				Destination: o.Destination,
				Asset:       asset,
				Amount:      amount,
			})
		case *txnbuild.InvokeHostFunction:
			parsed.Operations = append(parsed.Operations, Operation{
				Kind: OperationContractTransfer,
			})
		}
	}

	return parsed, nil
}

func (a *StellarAdapter) HashTransactionXDR(envelopeXDR string, networkPassphrase string) (string, error) {
	var envelope xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(envelopeXDR, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidXDR, err)
	}
	hash, err := network.HashTransactionInEnvelope(envelope, networkPassphrase)
	if err != nil {
		return "", fmt.Errorf("hash transaction: %w", err)
	}
	return fmt.Sprintf("%x", hash), nil
}

func (a *StellarAdapter) WrapFeeBump(ctx context.Context, params FeeBumpParams, sign func(hash [32]byte) ([]byte, error)) (string, error) {
	genericInner, err := txnbuild.TransactionFromXDR(params.InnerEnvelopeXDR)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidXDR, err)
	}
	inner, ok := genericInner.Transaction()
	if !ok {
		return "", fmt.Errorf("%w: inner envelope is not a plain transaction", errInvalidXDR)
	}

	feeBump, err := txnbuild.NewFeeBumpTransaction(txnbuild.FeeBumpTransactionParams{
		Inner:      inner,
		FeeAccount: params.FeeSource,
		BaseFee:    params.BaseFeeStroops,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errFeeBumpFailed, err)
	}

	hash, err := feeBump.Hash(a.NetworkPassphrase)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errFeeBumpFailed, err)
	}
	sig, err := sign(hash)
	if err != nil {
		return "", fmt.Errorf("%w: sign fee-bump: %v", errFeeBumpFailed, err)
	}
	feeBump, err = feeBump.AddSignatureDecorated(xdr.DecoratedSignature{
		Hint:      xdr.SignatureHint{},
		Signature: xdr.Signature(sig),
	})
	if err != nil {
		return "", fmt.Errorf("%w: attach signature: %v", errFeeBumpFailed, err)
	}

	return feeBump.Base64()
}

func (a *StellarAdapter) SubmitTransaction(ctx context.Context, envelopeXDR string) (SubmitOutcome, error) {
	resp, err := a.Horizon.SubmitTransactionXDR(envelopeXDR)
	if err != nil {
		if isSorobanEnvelope(envelopeXDR) {
			return a.Soroban.SendAndAwait(ctx, envelopeXDR)
		}
		return SubmitOutcome{}, fmt.Errorf("submit transaction: %w", err)
	}
	return SubmitOutcome{
		Hash:           resp.Hash,
		Successful:     resp.Successful,
		LedgerSequence: uint32(resp.Ledger),
		ResultXDR:      resp.ResultXdr,
	}, nil
}

func (a *StellarAdapter) BuildNativePaymentXDR(ctx context.Context, params NativePaymentParams) (string, error) {
	sourceKP, err := keypair.ParseAddress(params.SourceAccount)
	if err != nil {
		return "", fmt.Errorf("invalid source account: %w", err)
	}

	account := txnbuild.SimpleAccount{
		AccountID: sourceKP.Address(),
		Sequence:  params.Sequence,
	}

	lumens, err := stroopsToDecimalString(params.AmountStroops)
	if err != nil {
		return "", err
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: params.Destination,
				Amount:      lumens,
				Asset:       txnbuild.NativeAsset{},
			},
		},
		BaseFee: txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(int64(params.TimeoutSeconds)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("build payment transaction: %w", err)
	}
	return tx.Base64()
}

func (a *StellarAdapter) BuildContractTransferXDR(ctx context.Context, params ContractTransferParams, sourceAccount string, sequence int64, timeoutSeconds int) (string, error) {
	invokeOp, err := buildTransferInvocation(params)
	if err != nil {
		return "", err
	}

	account := txnbuild.SimpleAccount{AccountID: sourceAccount, Sequence: sequence}
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{invokeOp},
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(int64(timeoutSeconds)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("build contract transfer transaction: %w", err)
	}

	simulated, err := a.Soroban.SimulateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("simulate contract transfer: %w", err)
	}
	tx, err = tx.SetSorobanTransactionData(simulated.TransactionData)
	if err != nil {
		return "", fmt.Errorf("apply simulated footprint: %w", err)
	}

	return tx.Base64()
}

func (a *StellarAdapter) SignTransactionXDR(envelopeXDR string, networkPassphrase string, sign func(hash [32]byte) ([]byte, error)) (string, error) {
	genericTx, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidXDR, err)
	}
	tx, ok := genericTx.Transaction()
	if !ok {
		return "", fmt.Errorf("%w: envelope is not a plain transaction", errInvalidXDR)
	}

	hash, err := tx.Hash(networkPassphrase)
	if err != nil {
		return "", fmt.Errorf("hash transaction: %w", err)
	}
	sig, err := sign(hash)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	tx, err = tx.AddSignatureDecorated(xdr.DecoratedSignature{
		Hint:      xdr.SignatureHint{},
		Signature: xdr.Signature(sig),
	})
	if err != nil {
		return "", fmt.Errorf("attach signature: %w", err)
	}
	return tx.Base64()
}

func isSorobanEnvelope(envelopeXDR string) bool {
	genericTx, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return false
	}
	tx, ok := genericTx.Transaction()
	if !ok {
		return false
	}
	for _, op := range tx.Operations() {
		if _, ok := op.(*txnbuild.InvokeHostFunction); ok {
			return true
		}
	}
	return false
}

func decimalStringToStroops(s string) *big.Int {
	amount, err := decimalAmountToStroops(s)
	if err != nil {
		return big.NewInt(0)
	}
	return amount
}

func stroopsToDecimalString(stroops *big.Int) (string, error) {
	rat := new(big.Rat).SetFrac(stroops, big.NewInt(10_000_000))
	return rat.FloatString(7), nil
}

func decimalAmountToStroops(s string) (*big.Int, error) {
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount: %q", s)
	}
	rat.Mul(rat, new(big.Rat).SetInt64(10_000_000))
	return new(big.Int).Quo(rat.Num(), rat.Denom()), nil
}

var (
	errInvalidXDR    = fmt.Errorf("invalid transaction xdr")
	errFeeBumpFailed = fmt.Errorf("fee bump failed")
)
