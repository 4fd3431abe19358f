// Package discovery implements the facilitator's resource catalog: a
// register/unregister/list/get store of DiscoveryEntry values, backed by
// the same key-value substrate as replay.
package discovery

import (
	"context"
	"sort"

	"github.com/stellar-x402/x402-go"
)

// DefaultPageSize and MaxPageSize bound list pagination.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is one page of a newest-lastUpdated-first listing.
type Page struct {
	Entries []x402.DiscoveryEntry `json:"items"`
	Total   int                   `json:"total"`
}

// Store is the capability interface facilitator.Service depends on for the
// discovery endpoints. DiscoveryEntries are mutated only by Register and
// Unregister. Register stamps LastUpdated itself at call time rather than
// trusting the caller's value, so newest-first ordering can't be gamed.
type Store interface {
	Register(ctx context.Context, entry x402.DiscoveryEntry) error
	Unregister(ctx context.Context, resource string) error
	Get(ctx context.Context, resource string) (x402.DiscoveryEntry, bool, error)
	// List returns a page of entries, newest-lastUpdated-first. typeFilter,
	// when non-empty, restricts the page to entries whose Type matches it.
	List(ctx context.Context, typeFilter string, offset, limit int) (Page, error)
}

// clampLimit applies the default/max pagination rule to a caller-supplied
// limit (0 means "use the default").
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// sortNewestFirst orders entries by LastUpdated descending, newest first.
func sortNewestFirst(entries []x402.DiscoveryEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastUpdated > entries[j].LastUpdated
	})
}
