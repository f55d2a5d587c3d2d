package handler

import (
	"strings"
	"time"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

var requestedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// --- Request → Service input ---

func toCreateWalkInput(req createWalkRequest, idempotencyKey string) (ports.CreateWalkInput, error) {
	at, err := parseRequestedTime(req.RequestedTime)
	if err != nil {
		return ports.CreateWalkInput{}, err
	}
	return ports.CreateWalkInput{
		DogID:           req.DogID,
		RequestedTime:   at,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		IdempotencyKey:  strings.TrimSpace(idempotencyKey),
	}, nil
}

func parseRequestedTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range requestedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.Validation("requested_time must be an RFC 3339 timestamp")
}

// --- Service result → HTTP response ---

func toWalkRequestResponses(views []*domain.WalkRequestView) []walkRequestResponse {
	out := make([]walkRequestResponse, len(views))
	for i, v := range views {
		out[i] = walkRequestResponse{
			RequestID:       v.ID,
			DogID:           v.DogID,
			DogName:         v.DogName,
			Size:            string(v.DogSize),
			OwnerName:       v.OwnerUsername,
			RequestedTime:   v.RequestedTime.UTC(),
			DurationMinutes: v.DurationMinutes,
			Location:        v.Location,
			Status:          string(v.Status),
			CreatedAt:       v.CreatedAt.UTC(),
		}
	}
	return out
}

func toDogResponses(dogs []*domain.Dog) []dogResponse {
	out := make([]dogResponse, len(dogs))
	for i, d := range dogs {
		out[i] = dogResponse{
			DogID:         d.ID,
			Name:          d.Name,
			Size:          string(d.Size),
			OwnerUsername: d.OwnerUsername,
		}
	}
	return out
}

func toDogDirectoryResponses(dogs []*domain.Dog) []dogDirectoryResponse {
	out := make([]dogDirectoryResponse, len(dogs))
	for i, d := range dogs {
		out[i] = dogDirectoryResponse{DogName: d.Name, Size: string(d.Size), OwnerUsername: d.OwnerUsername}
	}
	return out
}

func toWalkerSummaryResponses(rows []*domain.WalkerSummary) []walkerSummaryResponse {
	out := make([]walkerSummaryResponse, len(rows))
	for i, r := range rows {
		out[i] = walkerSummaryResponse{
			WalkerUsername: r.WalkerUsername,
			TotalRatings:   r.TotalRatings,
			AverageRating:  r.AverageRating,
			CompletedWalks: r.CompletedWalks,
		}
	}
	return out
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = userResponse{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
	}
	return out
}
