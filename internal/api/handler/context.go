package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pawtrail/dogwalk-service/internal/api/middleware"
	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

// currentActor returns the caller attached by the session middleware. Routes
// are guarded by RBAC or RequireSession, so a miss means the middleware did
// not run and the request is treated as unauthenticated.
func currentActor(c echo.Context) (ports.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return ports.Actor{}, domain.Auth(domain.MsgNotLoggedIn)
	}
	return actor, nil
}

// requestID parses the :id path parameter. An id that is not a positive
// integer cannot name a walk request.
func requestID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NotFound(domain.MsgRequestNotFound)
	}
	return id, nil
}
