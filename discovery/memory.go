package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/stellar-x402/x402-go"
)

// MemoryStore is an in-process discovery catalog, suitable for tests and
// single-instance facilitators.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]x402.DiscoveryEntry
	// Now returns the current time for stamping LastUpdated on Register; nil
	// means time.Now. Tests override it for a deterministic clock.
	Now func() time.Time
}

// NewMemoryStore returns an empty catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]x402.DiscoveryEntry)}
}

func (m *MemoryStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MemoryStore) Register(ctx context.Context, entry x402.DiscoveryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.LastUpdated = m.now().Unix()
	m.entries[entry.Resource] = entry
	return nil
}

func (m *MemoryStore) Unregister(ctx context.Context, resource string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, resource)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, resource string) (x402.DiscoveryEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[resource]
	return entry, ok, nil
}

func (m *MemoryStore) List(ctx context.Context, typeFilter string, offset, limit int) (Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]x402.DiscoveryEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		if typeFilter != "" && entry.Type != typeFilter {
			continue
		}
		all = append(all, entry)
	}
	sortNewestFirst(all)

	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return Page{Total: len(all)}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return Page{Entries: all[offset:end], Total: len(all)}, nil
}
