package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

// SessionCookieName is the cookie that carries the signed session id.
const SessionCookieName = "dogwalk.sid"

// Context keys populated by Session.
const (
	KeySessionID = "session_id"
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyRole      = "role"

	keySessionErr = "session_err"
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies the session cookie. The cookie value is an
// HS256 JWT whose sid claim names a server-side session record; the record
// stays authoritative, so destroying it invalidates the cookie at once.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessionCodec(secret string, ttl time.Duration, secure bool) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Cookie returns a signed cookie for sessionID, valid for the codec TTL.
func (sc *SessionCodec) Cookie(sessionID string, now time.Time) (*http.Cookie, error) {
	expires := now.Add(sc.ttl)
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.secret)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(sc.ttl.Seconds()),
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Expired returns a cookie that makes the browser drop the session cookie.
func (sc *SessionCodec) Expired() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionID extracts and verifies the session id carried by r.
func (sc *SessionCodec) SessionID(r *http.Request) (string, error) {
	ck, err := r.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return "", domain.Auth(domain.MsgNotLoggedIn)
	}

	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return sc.secret, nil
	})
	if err != nil || !tkn.Valid || claims.SessionID == "" {
		return "", domain.Auth(domain.MsgNotLoggedIn)
	}
	return claims.SessionID, nil
}

// SessionLoader resolves a session id to its server-side record.
type SessionLoader interface {
	CurrentUser(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Session attaches the caller's session to the context when the request
// carries a valid cookie. Anonymous requests pass through untouched;
// protected routes add RequireSession or RBAC.
func Session(codec *SessionCodec, loader SessionLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, err := codec.SessionID(c.Request())
			if err != nil {
				return next(c)
			}

			sess, err := loader.CurrentUser(c.Request().Context(), sid)
			switch {
			case err == nil:
				c.Set(KeySessionID, sid)
				c.Set(KeyUserID, sess.UserID)
				c.Set(KeyUsername, sess.Username)
				c.Set(KeyRole, sess.Role)
			case errors.Is(err, domain.ErrAuth):
				// stale cookie, treat as anonymous
			default:
				c.Set(keySessionErr, err)
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests without a live session.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := ActorFrom(c); !ok {
				return sessionError(c)
			}
			return next(c)
		}
	}
}

// ActorFrom returns the authenticated caller attached by Session.
func ActorFrom(c echo.Context) (ports.Actor, bool) {
	role, _ := c.Get(KeyRole).(string)
	userID, _ := c.Get(KeyUserID).(int64)
	if role == "" || userID == 0 {
		return ports.Actor{}, false
	}
	username, _ := c.Get(KeyUsername).(string)
	return ports.Actor{UserID: userID, Username: username, Role: role}, true
}

// sessionError reports why no session is attached: the store failure seen
// while loading it, or a plain authentication error.
func sessionError(c echo.Context) error {
	if err, ok := c.Get(keySessionErr).(error); ok {
		return err
	}
	return domain.Auth(domain.MsgNotLoggedIn)
}
