package ports

import (
	"context"
	"time"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// SessionStore keeps server-side session records keyed by an opaque id.
type SessionStore interface {
	// Create stores the session under a freshly generated id, valid for ttl.
	Create(ctx context.Context, s *domain.Session, ttl time.Duration) (string, error)
	// Get returns the session or domain.ErrAuth if it is unknown or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Destroy removes the session. Destroying an unknown id is not an error.
	Destroy(ctx context.Context, id string) error
}

// IdempotencyStore remembers which walk request an idempotency key produced.
// A key is claimed before the insert and completed after it, so two
// concurrent creates with one key never both insert.
type IdempotencyStore interface {
	// Claim reserves key for the caller. When the key is already taken it
	// reports claimed=false and the request id stored for it, which is 0
	// while the first create is still in flight.
	Claim(ctx context.Context, key string) (requestID int64, claimed bool, err error)
	// Complete records the request id created under a claimed key.
	Complete(ctx context.Context, key string, requestID int64) error
	// Release drops a claim whose create failed.
	Release(ctx context.Context, key string) error
}
