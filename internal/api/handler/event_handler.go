package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

// EventHandler serves the status history recorded for walk requests.
type EventHandler struct {
	service ports.WalkService
}

func NewEventHandler(service ports.WalkService) *EventHandler {
	return &EventHandler{service: service}
}

// History handles GET /api/walks/:id/history. Events are persisted
// asynchronously, so a transition that just happened may not be listed yet.
//
// @Summary      Status history of a walk request
// @Tags         walks
// @Produce      json
// @Param        id   path      int  true  "Walk request id"
// @Success      200  {object}  historyResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/walks/{id}/history [get]
func (h *EventHandler) History(c echo.Context) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}

	events, err := h.service.RequestHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, historyResponse{RequestID: id, Events: toEventResponses(events)})
}

func toEventResponses(events []*domain.WalkEvent) []walkEventResponse {
	out := make([]walkEventResponse, len(events))
	for i, e := range events {
		out[i] = walkEventResponse{
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			OccurredAt: e.OccurredAt.UTC(),
		}
	}
	return out
}
