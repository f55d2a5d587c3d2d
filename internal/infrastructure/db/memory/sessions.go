package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// SessionStore keeps sessions in a map. Expired entries are dropped lazily
// on lookup.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session, ttl time.Duration) (string, error) {
	id := uuid.NewString()

	stored := *sess
	stored.ID = id
	if stored.ExpiresAt.IsZero() && ttl > 0 {
		stored.ExpiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[id] = stored
	s.mu.Unlock()
	return id, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.Auth(domain.MsgNotLoggedIn)
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, domain.Auth(domain.MsgNotLoggedIn)
	}
	return &sess, nil
}

func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// IdempotencyStore maps idempotency keys to the request they created. A
// claimed key maps to 0 until Complete runs.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]int64
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]int64)}
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}
	s.keys[key] = 0
	return 0, true, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, requestID int64) error {
	s.mu.Lock()
	s.keys[key] = requestID
	s.mu.Unlock()
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	if s.keys[key] == 0 {
		delete(s.keys, key)
	}
	s.mu.Unlock()
	return nil
}
