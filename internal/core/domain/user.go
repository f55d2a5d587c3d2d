package domain

import "time"

const (
	RoleOwner  = "owner"
	RoleWalker = "walker"
)

// ValidRole reports whether role is one a user may register with.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleWalker
}

// User models an account in the marketplace. The role never changes after
// creation.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	// Password is an opaque credential compared verbatim.
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the server-side record bound to a session cookie.
type Session struct {
	ID        string    `json:"-"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
