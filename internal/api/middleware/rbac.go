package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// RBAC admits only sessions whose role is one of allowedRoles. A missing
// session or a role outside the list is an authentication failure (401).
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return sessionError(c)
			}
			if _, ok := allowed[actor.Role]; !ok {
				return domain.Auth("unauthorized")
			}
			return next(c)
		}
	}
}
