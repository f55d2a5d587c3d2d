package domain

import "time"

// WalkStatus represents the lifecycle state of a walk request.
type WalkStatus string

const (
	WalkOpen      WalkStatus = "open"
	WalkAccepted  WalkStatus = "accepted"
	WalkCompleted WalkStatus = "completed"
	WalkCancelled WalkStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// completed and cancelled are terminal.
var validTransitions = map[WalkStatus][]WalkStatus{
	WalkOpen:     {WalkAccepted, WalkCancelled},
	WalkAccepted: {WalkCompleted, WalkCancelled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s WalkStatus) CanTransitionTo(next WalkStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s WalkStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Valid reports whether s is one of the known statuses.
func (s WalkStatus) Valid() bool {
	switch s {
	case WalkOpen, WalkAccepted, WalkCompleted, WalkCancelled:
		return true
	}
	return false
}

// SourcesFor returns every status that may transition into next.
func SourcesFor(next WalkStatus) []WalkStatus {
	var out []WalkStatus
	for _, from := range []WalkStatus{WalkOpen, WalkAccepted, WalkCompleted, WalkCancelled} {
		if from.CanTransitionTo(next) {
			out = append(out, from)
		}
	}
	return out
}

// ApplicationStatus is the state of a walker's application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// WalkRequest is an owner's request to have one of their dogs walked.
type WalkRequest struct {
	ID              int64      `json:"request_id"`
	DogID           int64      `json:"dog_id"`
	RequestedTime   time.Time  `json:"requested_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Location        string     `json:"location"`
	Status          WalkStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// WalkRequestView is a walk request joined with its dog and owner.
type WalkRequestView struct {
	WalkRequest
	DogName       string  `json:"dog_name"`
	DogSize       DogSize `json:"size"`
	OwnerID       int64   `json:"owner_id"`
	OwnerUsername string  `json:"owner_name"`
}

// WalkApplication links a walker to a request they wish to walk.
type WalkApplication struct {
	ID        int64             `json:"application_id"`
	RequestID int64             `json:"request_id"`
	WalkerID  int64             `json:"walker_id"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"applied_at"`
}

// WalkerSummary aggregates a walker's ratings and completed walks.
// AverageRating is nil when the walker has no ratings.
type WalkerSummary struct {
	WalkerID       int64    `json:"walker_id"`
	WalkerUsername string   `json:"walker_username"`
	TotalRatings   int      `json:"total_ratings"`
	AverageRating  *float64 `json:"average_rating"`
	CompletedWalks int      `json:"completed_walks"`
}
