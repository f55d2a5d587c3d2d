package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

func TestEventRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert event", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewEventRepository(mt.DB)

		err := repo.InsertEvent(context.Background(), &domain.WalkEvent{
			RequestID:  1,
			FromStatus: domain.WalkOpen,
			ToStatus:   domain.WalkAccepted,
			ActorID:    2,
			ActorRole:  domain.RoleWalker,
			OccurredAt: time.Now(),
		})
		if err != nil {
			mt.Fatalf("InsertEvent() error = %v", err)
		}
	})

	mt.Run("insert event write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewEventRepository(mt.DB)

		if err := repo.InsertEvent(context.Background(), &domain.WalkEvent{RequestID: 1}); err == nil {
			mt.Fatal("expected error, got nil")
		}
	})

	mt.Run("find by request", func(mt *mtest.T) {
		t0 := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
		ns := mt.Coll.Database().Name() + "." + collectionWalkEvents
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "request_id", Value: int64(1)},
			{Key: "from_status", Value: "open"},
			{Key: "to_status", Value: "accepted"},
			{Key: "actor_id", Value: int64(2)},
			{Key: "actor_role", Value: "walker"},
			{Key: "occurred_at", Value: t0},
		})
		second := mtest.CreateCursorResponse(0, ns, mtest.NextBatch, bson.D{
			{Key: "request_id", Value: int64(1)},
			{Key: "from_status", Value: "accepted"},
			{Key: "to_status", Value: "completed"},
			{Key: "actor_id", Value: int64(1)},
			{Key: "actor_role", Value: "owner"},
			{Key: "occurred_at", Value: t0.Add(time.Hour)},
		})
		mt.AddMockResponses(first, second)
		repo := NewEventRepository(mt.DB)

		events, err := repo.FindByRequest(context.Background(), 1)
		if err != nil {
			mt.Fatalf("FindByRequest() error = %v", err)
		}
		if len(events) != 2 {
			mt.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].ToStatus != domain.WalkAccepted || events[1].ToStatus != domain.WalkCompleted {
			mt.Errorf("unexpected order: %s, %s", events[0].ToStatus, events[1].ToStatus)
		}
		if events[1].ActorRole != domain.RoleOwner {
			mt.Errorf("expected actor role owner, got %s", events[1].ActorRole)
		}
		if !events[0].OccurredAt.Equal(t0) {
			mt.Errorf("expected occurred_at %v, got %v", t0, events[0].OccurredAt)
		}
	})
}
