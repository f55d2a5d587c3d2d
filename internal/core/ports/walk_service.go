package ports

import (
	"context"
	"time"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// Actor is the authenticated caller, taken from the session.
type Actor struct {
	UserID   int64
	Username string
	Role     string
}

// CreateWalkInput carries the fields of a new walk request.
type CreateWalkInput struct {
	DogID           int64
	RequestedTime   time.Time
	DurationMinutes int
	Location        string
	IdempotencyKey  string
}

// CreateWalkResult is returned by CreateRequest.
type CreateWalkResult struct {
	RequestID int64
	Status    domain.WalkStatus
	// AlreadyExisted is true when the idempotency key matched an earlier request.
	AlreadyExisted bool
}

// WalkService is the matching engine plus the read side of the store.
type WalkService interface {
	ListOpenRequests(ctx context.Context) ([]*domain.WalkRequestView, error)
	CreateRequest(ctx context.Context, actor Actor, in CreateWalkInput) (*CreateWalkResult, error)
	ListRequestsForOwner(ctx context.Context, actor Actor) ([]*domain.WalkRequestView, error)
	ApplyToRequest(ctx context.Context, actor Actor, requestID int64) (*domain.WalkApplication, error)
	CompleteRequest(ctx context.Context, actor Actor, requestID int64) error
	CancelRequest(ctx context.Context, actor Actor, requestID int64) error
	RequestHistory(ctx context.Context, requestID int64) ([]*domain.WalkEvent, error)
	ListDogs(ctx context.Context) ([]*domain.Dog, error)
	ListOwnerDogs(ctx context.Context, actor Actor) ([]*domain.Dog, error)
	WalkerSummary(ctx context.Context) ([]*domain.WalkerSummary, error)
}
