package replay

import (
	"context"
	"sync"
	"time"

	"github.com/stellar-x402/x402-go"
)

// shardCount spreads the lock surface across the key space so concurrent
// settlements of unrelated hashes never contend.
const shardCount = 32

// MemoryStore is a sharded in-memory Store. It exists only for tests and
// single-process non-production deployments: x402.LoadFacilitatorConfigFromEnv
// refuses to select it unless the operator explicitly opts in.
type MemoryStore struct {
	shards [shardCount]*shard
}

type shard struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	for i := range m.shards {
		m.shards[i] = &shard{records: make(map[string]Record)}
	}
	return m
}

func (m *MemoryStore) shardFor(hash string) *shard {
	var h uint32
	for i := 0; i < len(hash); i++ {
		h = h*31 + uint32(hash[i])
	}
	return m.shards[h%shardCount]
}

func (m *MemoryStore) Claim(ctx context.Context, hash string) error {
	s := m.shardFor(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[hash]; exists {
		return ErrAlreadyPending
	}
	s.records[hash] = Record{Status: StatusPending, ClaimedAt: time.Now()}
	return nil
}

func (m *MemoryStore) Resolve(ctx context.Context, hash string, result x402.SettleResult) error {
	s := m.shardFor(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[hash]
	rec.Status = StatusSettled
	rec.Result = result
	s.records[hash] = rec
	return nil
}

func (m *MemoryStore) Release(ctx context.Context, hash string) error {
	s := m.shardFor(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, hash)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, hash string) (Record, bool, error) {
	s := m.shardFor(hash)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[hash]
	return rec, ok, nil
}
