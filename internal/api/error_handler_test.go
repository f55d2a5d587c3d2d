package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", domain.Validation("location is required"), http.StatusUnprocessableEntity, "location is required"},
		{"auth", domain.Auth(domain.MsgNotLoggedIn), http.StatusUnauthorized, domain.MsgNotLoggedIn},
		{"forbidden", domain.Forbidden("dog belongs to another owner"), http.StatusForbidden, "dog belongs to another owner"},
		{"not found", domain.NotFound(domain.MsgRequestNotFound), http.StatusNotFound, domain.MsgRequestNotFound},
		{"conflict", domain.Conflict(domain.MsgRequestUnavailable), http.StatusConflict, domain.MsgRequestUnavailable},
		{"unavailable hides cause", domain.Unavailable("datastore timed out", errors.New("dial tcp 10.0.0.1:5432")), http.StatusServiceUnavailable, "datastore timed out"},
		{"wrapped conflict", fmt.Errorf("apply: %w", domain.Conflict(domain.MsgRequestUnavailable)), http.StatusConflict, domain.MsgRequestUnavailable},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"unknown", errors.New(`pq: relation "walk_requests" does not exist`), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/walks", nil), rec)

			h(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.Conflict("late"), c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was rewritten: %d %q", rec.Code, rec.Body.String())
	}
}
