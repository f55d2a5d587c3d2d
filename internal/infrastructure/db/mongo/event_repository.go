package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

const collectionWalkEvents = "walk_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionWalkEvents)}
}

// InsertEvent appends a transition to the walk_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.WalkEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *event
	doc.OccurredAt = doc.OccurredAt.UTC()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert walk event: %w", err)
	}
	return nil
}

// FindByRequest returns the history of one request, oldest first.
func (r *EventRepository) FindByRequest(ctx context.Context, requestID int64) ([]*domain.WalkEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, domain.Unavailable("event log unavailable", fmt.Errorf("find walk events: %w", err))
	}
	defer cur.Close(ctx)

	events := make([]*domain.WalkEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode walk events: %w", err)
	}
	return events, nil
}

// EnsureIndexes creates the lookup index on the walk_events collection.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	return err
}
