package ports

import (
	"context"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// EventRepository persists and reads the walk request status history.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.WalkEvent) error
	// FindByRequest returns the events for a request, oldest first.
	FindByRequest(ctx context.Context, requestID int64) ([]*domain.WalkEvent, error)
}

// EventPublisher hands a transition event off for asynchronous persistence.
type EventPublisher interface {
	Enqueue(event domain.WalkEvent)
}
