package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stellar-x402/x402-go"
)

// RedisStore is the production-grade shared Store, backed by a single Redis
// key per transaction hash. Claim uses SetNX for the conditional write;
// Resolve overwrites that key with the terminal record so every
// facilitator worker observes the same outcome.
type RedisStore struct {
	Client *redis.Client
	Prefix string
	// TTL bounds how long a record is retained; it must outlive the
	// ledger's transaction validity window.
	TTL time.Duration
}

// NewRedisStore connects to connectionString (a redis:// URL) and returns a
// RedisStore with a sane default TTL.
func NewRedisStore(connectionString string) (*RedisStore, error) {
	opts, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("parse redis connection string: %w", err)
	}
	return &RedisStore{
		Client: redis.NewClient(opts),
		Prefix: "x402:replay:",
		TTL:    24 * time.Hour,
	}, nil
}

func (r *RedisStore) key(hash string) string {
	return r.Prefix + hash
}

func (r *RedisStore) Claim(ctx context.Context, hash string) error {
	rec := Record{Status: StatusPending, ClaimedAt: time.Now()}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal pending record: %w", err)
	}

	ok, err := r.Client.SetNX(ctx, r.key(hash), payload, r.TTL).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", x402.ErrReplayStoreUnavailable, err)
	}
	if !ok {
		return ErrAlreadyPending
	}
	return nil
}

func (r *RedisStore) Resolve(ctx context.Context, hash string, result x402.SettleResult) error {
	rec := Record{Status: StatusSettled, Result: result, ClaimedAt: time.Now()}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal settled record: %w", err)
	}
	if err := r.Client.Set(ctx, r.key(hash), payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", x402.ErrReplayStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Release(ctx context.Context, hash string) error {
	if err := r.Client.Del(ctx, r.key(hash)).Err(); err != nil {
		return fmt.Errorf("%w: %v", x402.ErrReplayStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, hash string) (Record, bool, error) {
	payload, err := r.Client.Get(ctx, r.key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", x402.ErrReplayStoreUnavailable, err)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, false, fmt.Errorf("unmarshal replay record: %w", err)
	}
	return rec, true, nil
}
