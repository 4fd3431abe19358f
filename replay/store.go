// Package replay enforces the at-most-once settlement invariant: every submitted transaction hash may settle
// successfully exactly once, linearizable per key.
package replay

import (
	"context"
	"errors"
	"time"

	"github.com/stellar-x402/x402-go"
)

// Status distinguishes a settlement in flight from a finished one.
type Status string

const (
	// StatusPending marks a hash as claimed but not yet resolved. It is
	// written before ledger submission so a concurrent settle call on the
	// same hash observes the claim instead of racing to submit twice.
	StatusPending Status = "pending"
	StatusSettled Status = "settled"
)

// Record is what the store persists for a transaction hash once it is
// claimed. Settled records carry the terminal SettleResult so repeat
// observations return the identical result without touching the ledger
// again (testable property "Exactly-once settlement").
type Record struct {
	Status    Status
	Result    x402.SettleResult
	ClaimedAt time.Time
}

// ErrAlreadyPending is returned by Claim when another caller already holds
// the pending marker for hash; the caller should wait/poll rather than
// submit a second transaction.
var ErrAlreadyPending = errors.New("replay: hash already claimed")

// Store is the capability interface facilitator.Service depends on. Claim
// and Resolve together implement a conditional SETNX-style write: Claim
// succeeds for exactly one caller per hash, and that caller alone may
// Resolve it.
type Store interface {
	// Claim attempts to atomically write a pending marker for hash. It
	// returns ErrAlreadyPending if a record (pending or settled) already
	// exists.
	Claim(ctx context.Context, hash string) error

	// Resolve overwrites a pending marker with the terminal result. Called
	// only by the goroutine that successfully Claimed the hash.
	Resolve(ctx context.Context, hash string, result x402.SettleResult) error

	// Release removes a pending marker without resolving it, used when
	// submission fails so a retry is possible.
	Release(ctx context.Context, hash string) error

	// Get returns the current record for hash, if any.
	Get(ctx context.Context, hash string) (Record, bool, error)
}
