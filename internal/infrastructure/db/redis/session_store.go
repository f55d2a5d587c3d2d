package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// SessionStore keeps sessions as JSON values with a TTL.
// Key format: session:<id>
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session, ttl time.Duration) (string, error) {
	id := uuid.NewString()

	stored := *sess
	stored.ID = id
	payload, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(id), payload, ttl).Err(); err != nil {
		return "", unavailable("store session", err)
	}
	return id, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.Auth(domain.MsgNotLoggedIn)
	}
	if err != nil {
		return nil, unavailable("load session", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(time.Now()) {
		return nil, domain.Auth(domain.MsgNotLoggedIn)
	}
	sess.ID = id
	return &sess, nil
}

func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return unavailable("destroy session", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}
