package ports

import (
	"context"
	"time"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// NewWalkRequest carries the fields needed to insert a walk request.
type NewWalkRequest struct {
	DogID           int64
	RequestedTime   time.Time
	DurationMinutes int
	Location        string
}

// WalkRequestRepository owns walk requests and their applications. The
// status-changing methods are compare-and-set operations enforced by the
// datastore.
type WalkRequestRepository interface {
	// Create inserts an open request. Fails with domain.ErrValidation when
	// DogID does not reference an existing dog.
	Create(ctx context.Context, in NewWalkRequest) (*domain.WalkRequest, error)
	FindByID(ctx context.Context, id int64) (*domain.WalkRequestView, error)
	// ListOpen returns open requests ordered by requested time ascending.
	ListOpen(ctx context.Context) ([]*domain.WalkRequestView, error)
	// ListOpenByOwner returns open requests for the owner's dogs, most
	// recent requested time first.
	ListOpenByOwner(ctx context.Context, ownerID int64) ([]*domain.WalkRequestView, error)

	// Accept atomically moves the request from open to accepted and records
	// the walker's accepted application. If the request is no longer open
	// nothing is written and domain.ErrConflict is returned; an unknown
	// request yields domain.ErrNotFound.
	Accept(ctx context.Context, requestID, walkerID int64) (*domain.WalkApplication, error)

	// Transition moves the request to `to` only if its current status is one
	// of `from`. Returns the status it held before the update.
	Transition(ctx context.Context, requestID int64, from []domain.WalkStatus, to domain.WalkStatus) (domain.WalkStatus, error)
}

// SummaryRepository exposes aggregate queries used for public display.
type SummaryRepository interface {
	// WalkerSummary returns one row per walker, including walkers with no
	// ratings or completed walks.
	WalkerSummary(ctx context.Context) ([]*domain.WalkerSummary, error)
}
