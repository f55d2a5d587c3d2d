package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a claim survives a process that died
	// between Claim and Complete.
	pendingTTL = time.Minute
	pending    = 0
)

// IdempotencyStore remembers which walk request an Idempotency-Key created.
// Key format: idem:walk:<owner_id>:<key>. The value is 0 while the create
// is in flight.
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Claim reserves the key with SET NX, so exactly one caller inserts.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (int64, bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), pending, pendingTTL).Result()
	if err != nil {
		return 0, false, unavailable("idempotency claim", err)
	}
	if ok {
		return 0, true, nil
	}

	id, err := s.client.Get(ctx, s.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		// The claim expired between SETNX and GET; report it as in flight.
		return pending, false, nil
	}
	if err != nil {
		return 0, false, unavailable("idempotency lookup", err)
	}
	return id, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, requestID int64) error {
	if err := s.client.Set(ctx, s.key(key), requestID, idempotencyTTL).Err(); err != nil {
		return unavailable("idempotency complete", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable("idempotency release", err)
	}
	return nil
}

func (s *IdempotencyStore) key(key string) string {
	return fmt.Sprintf("idem:walk:%s", key)
}
