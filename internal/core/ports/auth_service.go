package ports

import (
	"context"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// RegisterInput carries the fields of a signup.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned after a successful authentication.
type LoginResult struct {
	SessionID string
	User      *domain.User
}

// AuthService handles registration, login and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*LoginResult, error)
	CurrentUser(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
