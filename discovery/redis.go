package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stellar-x402/x402-go"
)

// RedisStore persists the discovery catalog as a single Redis hash keyed by
// resource, sharing the same Redis deployment as replay.RedisStore.
type RedisStore struct {
	Client  *redis.Client
	HashKey string
	// Now returns the current time for stamping LastUpdated on Register; nil
	// means time.Now. Tests override it for a deterministic clock.
	Now func() time.Time
}

// NewRedisStore builds a RedisStore against an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client, HashKey: "x402:discovery"}
}

func (r *RedisStore) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *RedisStore) Register(ctx context.Context, entry x402.DiscoveryEntry) error {
	entry.LastUpdated = r.now().Unix()
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal discovery entry: %w", err)
	}
	if err := r.Client.HSet(ctx, r.HashKey, entry.Resource, payload).Err(); err != nil {
		return fmt.Errorf("register discovery entry: %w", err)
	}
	return nil
}

func (r *RedisStore) Unregister(ctx context.Context, resource string) error {
	if err := r.Client.HDel(ctx, r.HashKey, resource).Err(); err != nil {
		return fmt.Errorf("unregister discovery entry: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, resource string) (x402.DiscoveryEntry, bool, error) {
	payload, err := r.Client.HGet(ctx, r.HashKey, resource).Bytes()
	if errors.Is(err, redis.Nil) {
		return x402.DiscoveryEntry{}, false, nil
	}
	if err != nil {
		return x402.DiscoveryEntry{}, false, fmt.Errorf("get discovery entry: %w", err)
	}
	var entry x402.DiscoveryEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return x402.DiscoveryEntry{}, false, fmt.Errorf("unmarshal discovery entry: %w", err)
	}
	return entry, true, nil
}

func (r *RedisStore) List(ctx context.Context, typeFilter string, offset, limit int) (Page, error) {
	all, err := r.Client.HGetAll(ctx, r.HashKey).Result()
	if err != nil {
		return Page{}, fmt.Errorf("list discovery entries: %w", err)
	}

	entries := make([]x402.DiscoveryEntry, 0, len(all))
	for _, payload := range all {
		var entry x402.DiscoveryEntry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			continue
		}
		if typeFilter != "" && entry.Type != typeFilter {
			continue
		}
		entries = append(entries, entry)
	}
	sortNewestFirst(entries)

	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return Page{Total: len(entries)}, nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return Page{Entries: entries[offset:end], Total: len(entries)}, nil
}
