package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.WalkEvent
	fail   bool
}

func (r *recordingRepo) InsertEvent(_ context.Context, e *domain.WalkEvent) error {
	if r.fail {
		return errors.New("write failed")
	}
	r.mu.Lock()
	r.events = append(r.events, *e)
	r.mu.Unlock()
	return nil
}

func (r *recordingRepo) FindByRequest(_ context.Context, requestID int64) ([]*domain.WalkEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WalkEvent
	for i := range r.events {
		if r.events[i].RequestID == requestID {
			e := r.events[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *recordingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestDispatcher_PreservesPerRequestOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	t0 := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	for req := int64(1); req <= 6; req++ {
		d.Enqueue(domain.WalkEvent{RequestID: req, FromStatus: domain.WalkOpen, ToStatus: domain.WalkAccepted, OccurredAt: t0})
		d.Enqueue(domain.WalkEvent{RequestID: req, FromStatus: domain.WalkAccepted, ToStatus: domain.WalkCompleted, OccurredAt: t0.Add(time.Minute)})
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < 12 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	if got := repo.count(); got != 12 {
		t.Fatalf("expected 12 persisted events, got %d", got)
	}
	for req := int64(1); req <= 6; req++ {
		events, _ := repo.FindByRequest(context.Background(), req)
		if len(events) != 2 {
			t.Fatalf("request %d: expected 2 events, got %d", req, len(events))
		}
		if events[0].ToStatus != domain.WalkAccepted || events[1].ToStatus != domain.WalkCompleted {
			t.Errorf("request %d: events out of order: %s then %s", req, events[0].ToStatus, events[1].ToStatus)
		}
	}
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	for i := int64(1); i <= 5; i++ {
		d.Enqueue(domain.WalkEvent{RequestID: i, ToStatus: domain.WalkCancelled})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if got := repo.count(); got != 5 {
		t.Errorf("expected buffered events to be drained, got %d", got)
	}
}

func TestDispatcher_FailuresAreNotFatal(t *testing.T) {
	repo := &recordingRepo{fail: true}
	d := NewDispatcher(2, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.WalkEvent{RequestID: 1, ToStatus: domain.WalkAccepted})
	d.Enqueue(domain.WalkEvent{RequestID: 2, ToStatus: domain.WalkAccepted})

	cancel()
	d.Wait()

	if got := repo.count(); got != 0 {
		t.Errorf("expected no stored events, got %d", got)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(4, &recordingRepo{}, zerolog.Nop())
	for id := int64(0); id < 50; id++ {
		a, b := d.shardIndex(id), d.shardIndex(id)
		if a != b || a < 0 || a >= 4 {
			t.Fatalf("shardIndex(%d) = %d, %d", id, a, b)
		}
	}
}
