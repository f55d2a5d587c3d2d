package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

// WalkHandler handles HTTP requests for walk requests, dogs and walkers.
type WalkHandler struct {
	service ports.WalkService
}

func NewWalkHandler(service ports.WalkService) *WalkHandler {
	return &WalkHandler{service: service}
}

// ListOpen handles GET /api/walks.
//
// @Summary      List open walk requests
// @Tags         walks
// @Produce      json
// @Success      200  {array}   walkRequestResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/walks [get]
func (h *WalkHandler) ListOpen(c echo.Context) error {
	views, err := h.service.ListOpenRequests(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWalkRequestResponses(views))
}

// Create handles POST /api/walks.
//
// @Summary      Post a walk request for one of your dogs
// @Tags         walks
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Replays the original request when repeated"
// @Param        body             body      createWalkRequest  true   "Walk request"
// @Success      201              {object}  createWalkResponse
// @Success      200              {object}  createWalkResponse  "idempotent replay"
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/walks [post]
func (h *WalkHandler) Create(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req createWalkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	in, err := toCreateWalkInput(req, c.Request().Header.Get("Idempotency-Key"))
	if err != nil {
		return err
	}

	res, err := h.service.CreateRequest(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
		c.Response().Header().Set("Idempotent-Replayed", "true")
	}
	return c.JSON(status, createWalkResponse{Message: "Walk request created", RequestID: res.RequestID})
}

// Apply handles POST /api/walks/:id/apply. The walker is the session user;
// any walker_id in the body is ignored.
//
// @Summary      Apply to walk an open request
// @Tags         walks
// @Produce      json
// @Param        id   path      int  true  "Walk request id"
// @Success      201  {object}  applyResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/walks/{id}/apply [post]
func (h *WalkHandler) Apply(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := requestID(c)
	if err != nil {
		return err
	}

	app, err := h.service.ApplyToRequest(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, applyResponse{Message: "Application submitted", ApplicationID: app.ID})
}

// Complete handles POST /api/walks/:id/complete.
//
// @Summary      Mark an accepted walk as completed
// @Tags         walks
// @Produce      json
// @Param        id   path      int  true  "Walk request id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/walks/{id}/complete [post]
func (h *WalkHandler) Complete(c echo.Context) error {
	return h.transition(c, h.service.CompleteRequest, "Walk completed")
}

// Cancel handles POST /api/walks/:id/cancel.
//
// @Summary      Cancel an open or accepted walk
// @Tags         walks
// @Produce      json
// @Param        id   path      int  true  "Walk request id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/walks/{id}/cancel [post]
func (h *WalkHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.service.CancelRequest, "Walk cancelled")
}

type transitionFunc func(ctx context.Context, actor ports.Actor, requestID int64) error

func (h *WalkHandler) transition(c echo.Context, fn transitionFunc, msg string) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := requestID(c)
	if err != nil {
		return err
	}
	if err := fn(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// MyRequests handles GET /api/walks/myrequests.
//
// @Summary      List your open walk requests, newest first
// @Tags         walks
// @Produce      json
// @Success      200  {array}   walkRequestResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/walks/myrequests [get]
func (h *WalkHandler) MyRequests(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListRequestsForOwner(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWalkRequestResponses(views))
}

// Dogs handles GET /api/walks/dogs.
//
// @Summary      List every dog with its owner
// @Tags         walks
// @Produce      json
// @Success      200  {array}   dogResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/walks/dogs [get]
func (h *WalkHandler) Dogs(c echo.Context) error {
	dogs, err := h.service.ListDogs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDogResponses(dogs))
}

// DogDirectory handles GET /api/dogs.
//
// @Summary      Dog directory: name, size and owner
// @Tags         dogs
// @Produce      json
// @Success      200  {array}   dogDirectoryResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/dogs [get]
func (h *WalkHandler) DogDirectory(c echo.Context) error {
	dogs, err := h.service.ListDogs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDogDirectoryResponses(dogs))
}

// MyDogs handles GET /api/users/me/dogs.
//
// @Summary      List the session owner's dogs
// @Tags         users
// @Produce      json
// @Success      200  {array}   dogResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/users/me/dogs [get]
func (h *WalkHandler) MyDogs(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	dogs, err := h.service.ListOwnerDogs(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDogResponses(dogs))
}

// WalkerSummary handles GET /api/walkers/summary.
//
// @Summary      Ratings and completed walks per walker
// @Tags         walkers
// @Produce      json
// @Success      200  {array}   walkerSummaryResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/walkers/summary [get]
func (h *WalkHandler) WalkerSummary(c echo.Context) error {
	rows, err := h.service.WalkerSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWalkerSummaryResponses(rows))
}
