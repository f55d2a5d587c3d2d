package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

type stubLoader struct {
	sessions map[string]*domain.Session
	err      error
}

func (s *stubLoader) CurrentUser(_ context.Context, id string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.Auth(domain.MsgNotLoggedIn)
	}
	return sess, nil
}

func newRequestWithCookie(t *testing.T, codec *SessionCodec, sid string) *http.Request {
	t.Helper()
	ck, err := codec.Cookie(sid, time.Now())
	if err != nil {
		t.Fatalf("sign cookie: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	return req
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)
	req := newRequestWithCookie(t, codec, "abc")

	sid, err := codec.SessionID(req)
	if err != nil {
		t.Fatalf("SessionID error: %v", err)
	}
	if sid != "abc" {
		t.Fatalf("expected abc, got %q", sid)
	}
}

func TestSessionCodec_Rejects(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, false)

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if _, err := codec.SessionID(req); !errors.Is(err, domain.ErrAuth) {
			t.Fatalf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("other secret", func(t *testing.T) {
		req := newRequestWithCookie(t, NewSessionCodec("other", time.Hour, false), "abc")
		if _, err := codec.SessionID(req); !errors.Is(err, domain.ErrAuth) {
			t.Fatalf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		ck, err := codec.Cookie("abc", time.Now().Add(-2*time.Hour))
		if err != nil {
			t.Fatalf("sign cookie: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(ck)
		if _, err := codec.SessionID(req); !errors.Is(err, domain.ErrAuth) {
			t.Fatalf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sid": "abc"}).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signed})
		if _, err := codec.SessionID(req); !errors.Is(err, domain.ErrAuth) {
			t.Fatalf("expected ErrAuth, got %v", err)
		}
	})
}

func TestSession_AttachesActor(t *testing.T) {
	e := echo.New()
	codec := NewSessionCodec("secret", time.Hour, false)
	loader := &stubLoader{sessions: map[string]*domain.Session{
		"s1": {UserID: 1, Username: "alice123", Role: domain.RoleOwner},
	}}

	rec := httptest.NewRecorder()
	c := e.NewContext(newRequestWithCookie(t, codec, "s1"), rec)

	called := false
	h := Session(codec, loader)(func(c echo.Context) error {
		called = true
		actor, ok := ActorFrom(c)
		if !ok {
			t.Fatalf("expected actor in context")
		}
		if actor.UserID != 1 || actor.Username != "alice123" || actor.Role != domain.RoleOwner {
			t.Fatalf("unexpected actor: %+v", actor)
		}
		if c.Get(KeySessionID) != "s1" {
			t.Fatalf("session id not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSession_StaleCookieIsAnonymous(t *testing.T) {
	e := echo.New()
	codec := NewSessionCodec("secret", time.Hour, false)
	loader := &stubLoader{sessions: map[string]*domain.Session{}}

	c := e.NewContext(newRequestWithCookie(t, codec, "gone"), httptest.NewRecorder())

	h := Session(codec, loader)(RequireSession()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}))

	if err := h(c); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestSession_StoreFailureSurfacesOnProtectedRoutes(t *testing.T) {
	e := echo.New()
	codec := NewSessionCodec("secret", time.Hour, false)
	loader := &stubLoader{err: domain.Unavailable("session store unavailable", errors.New("dial tcp"))}

	public := Session(codec, loader)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	if err := public(e.NewContext(newRequestWithCookie(t, codec, "s1"), rec)); err != nil {
		t.Fatalf("public route should pass, got %v", err)
	}

	protected := Session(codec, loader)(RequireSession()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}))
	err := protected(e.NewContext(newRequestWithCookie(t, codec, "s1"), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSessionCodec_ExpiredCookie(t *testing.T) {
	ck := NewSessionCodec("secret", time.Hour, true).Expired()
	if ck.Name != SessionCookieName || ck.MaxAge >= 0 || ck.Value != "" {
		t.Fatalf("unexpected clearing cookie: %+v", ck)
	}
	if !ck.Secure || !ck.HttpOnly {
		t.Fatalf("expected secure http-only cookie")
	}
}
