package ledger

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"
)

// Mock is an in-memory Adapter for facilitator and gate tests. It never
// talks to a real network: transactions are "parsed" from a simple pipe
// delimited fixture format written by test helpers, and submission always
// succeeds unless FailSubmit is set.
type Mock struct {
	mu sync.Mutex

	Accounts       map[string]Account
	LedgerSequence uint32
	Submitted      []string
	FailSubmit     error
	FeeBumpFails   bool
}

// NewMock returns an empty Mock with ledger sequence 1000.
func NewMock() *Mock {
	return &Mock{
		Accounts:       make(map[string]Account),
		LedgerSequence: 1000,
	}
}

func (m *Mock) GetAccount(ctx context.Context, accountID string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.Accounts[accountID]
	if !ok {
		return Account{}, fmt.Errorf("account not found: %s", accountID)
	}
	return acc, nil
}

func (m *Mock) CurrentLedgerSequence(ctx context.Context) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LedgerSequence, nil
}

// ParseTransactionXDR interprets envelopeXDR as a Mock fixture string of the
// form "hash|source|sequence|destination|asset|amount|validUntilUnix"
// rather than real XDR, so tests can construct payloads without a live
// Stellar SDK round-trip.
func (m *Mock) ParseTransactionXDR(envelopeXDR string) (ParsedTransaction, error) {
	fields := splitFixture(envelopeXDR)
	if len(fields) < 6 {
		return ParsedTransaction{}, fmt.Errorf("%w: malformed mock envelope", errInvalidXDR)
	}
	amount, ok := new(big.Int).SetString(fields[5], 10)
	if !ok {
		return ParsedTransaction{}, fmt.Errorf("%w: bad amount in mock envelope", errInvalidXDR)
	}
	kind := OperationNativePayment
	if fields[4] != "native" {
		kind = OperationContractTransfer
	}
	var timeBound int64
	if len(fields) > 6 {
		fmt.Sscanf(fields[6], "%d", &timeBound)
	}
	return ParsedTransaction{
		Hash:              fields[0],
		SourceAccount:     fields[1],
		SequenceNumber:    atoi64(fields[2]),
		TimeBoundsMaxUnix: timeBound,
		Operations: []Operation{{
			Kind:        kind,
			Destination: fields[3],
			Asset:       fields[4],
			Amount:      amount,
		}},
	}, nil
}

func (m *Mock) HashTransactionXDR(envelopeXDR string, networkPassphrase string) (string, error) {
	fields := splitFixture(envelopeXDR)
	if len(fields) > 0 && fields[0] != "" {
		return fields[0], nil
	}
	sum := sha256.Sum256([]byte(envelopeXDR + networkPassphrase))
	return fmt.Sprintf("%x", sum), nil
}

func (m *Mock) WrapFeeBump(ctx context.Context, params FeeBumpParams, sign func(hash [32]byte) ([]byte, error)) (string, error) {
	if m.FeeBumpFails {
		return "", fmt.Errorf("%w: mock configured to fail", errFeeBumpFailed)
	}
	if _, err := sign([32]byte{}); err != nil {
		return "", fmt.Errorf("%w: %v", errFeeBumpFailed, err)
	}
	return "FEEBUMP(" + params.InnerEnvelopeXDR + ")", nil
}

func (m *Mock) SubmitTransaction(ctx context.Context, envelopeXDR string) (SubmitOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSubmit != nil {
		return SubmitOutcome{}, m.FailSubmit
	}
	m.Submitted = append(m.Submitted, envelopeXDR)
	hash, _ := m.HashTransactionXDR(envelopeXDR, "")
	return SubmitOutcome{Hash: hash, Successful: true, LedgerSequence: m.LedgerSequence}, nil
}

func (m *Mock) BuildNativePaymentXDR(ctx context.Context, params NativePaymentParams) (string, error) {
	return fmt.Sprintf("|%s|%d|%s|native|%s|", params.SourceAccount, params.Sequence, params.Destination, params.AmountStroops.String()), nil
}

func (m *Mock) BuildContractTransferXDR(ctx context.Context, params ContractTransferParams, sourceAccount string, sequence int64, timeoutSeconds int) (string, error) {
	return fmt.Sprintf("|%s|%d|%s|%s|%s|", sourceAccount, sequence, params.To, params.ContractID, params.AmountAtomic.String()), nil
}

// SignTransactionXDR fills in the hash field of a Mock fixture envelope
// produced by BuildNativePaymentXDR/BuildContractTransferXDR: it invokes
// sign against a zero hash (wrapping a signer error, e.g.
// x402.ErrSignerCancelled, with %w so errors.Is still sees it) and then
// derives a deterministic
// fixture hash from the envelope and signature so repeated signing of the
// same unsigned envelope is stable.
func (m *Mock) SignTransactionXDR(envelopeXDR string, networkPassphrase string, sign func(hash [32]byte) ([]byte, error)) (string, error) {
	sig, err := sign([32]byte{})
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	fields := splitFixture(envelopeXDR)
	if len(fields) < 6 {
		return "", fmt.Errorf("%w: malformed mock envelope", errInvalidXDR)
	}
	sum := sha256.Sum256(append([]byte(envelopeXDR+networkPassphrase), sig...))
	fields[0] = fmt.Sprintf("%x", sum)
	signed := fields[0]
	for _, f := range fields[1:] {
		signed += "|" + f
	}
	return signed, nil
}

// PutAccount registers a fixture account for GetAccount to return.
func (m *Mock) PutAccount(acc Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accounts[acc.AccountID] = acc
}

func splitFixture(s string) []string {
	var fields []string
	var cur []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			fields = append(fields, string(cur))
			cur = nil
			continue
		}
		cur = append(cur, s[i])
	}
	fields = append(fields, string(cur))
	return fields
}

func atoi64(s string) int64 {
	var n int64
	fmt.Sscanf(s, "%d", &n)
	return n
}
