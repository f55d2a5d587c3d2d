package handler

import "time"

type walkEventResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    int64     `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	OccurredAt time.Time `json:"occurred_at"`
}

type historyResponse struct {
	RequestID int64               `json:"request_id"`
	Events    []walkEventResponse `json:"events"`
}
