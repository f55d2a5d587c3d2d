package domain

import "time"

// WalkEvent records a single status transition on a walk request.
type WalkEvent struct {
	RequestID  int64      `json:"request_id" bson:"request_id"`
	FromStatus WalkStatus `json:"from_status" bson:"from_status"`
	ToStatus   WalkStatus `json:"to_status" bson:"to_status"`
	ActorID    int64      `json:"actor_id" bson:"actor_id"`
	ActorRole  string     `json:"actor_role" bson:"actor_role"`
	OccurredAt time.Time  `json:"occurred_at" bson:"occurred_at"`
}
