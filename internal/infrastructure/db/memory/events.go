package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// EventLog is an append-only walk event history.
type EventLog struct {
	mu     sync.RWMutex
	events map[int64][]domain.WalkEvent
}

func NewEventLog() *EventLog {
	return &EventLog{events: make(map[int64][]domain.WalkEvent)}
}

func (l *EventLog) InsertEvent(ctx context.Context, event *domain.WalkEvent) error {
	l.mu.Lock()
	l.events[event.RequestID] = append(l.events[event.RequestID], *event)
	l.mu.Unlock()
	return nil
}

func (l *EventLog) FindByRequest(ctx context.Context, requestID int64) ([]*domain.WalkEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stored := l.events[requestID]
	out := make([]*domain.WalkEvent, len(stored))
	for i := range stored {
		e := stored[i]
		out[i] = &e
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
