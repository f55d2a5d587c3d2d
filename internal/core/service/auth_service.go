package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
	"github.com/pawtrail/dogwalk-service/internal/pkg/metrics"
)

// AuthService implements registration, login and the session lifecycle.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, sessionTTL time.Duration, log zerolog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.Validation("username, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, domain.Validation("email must be a valid email")
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.Validation("role must be one of: owner walker")
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// Authenticate checks the credentials and opens a new session on success.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.Auth(domain.MsgInvalidCredentials)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Auth(domain.MsgInvalidCredentials)
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return nil, domain.Auth(domain.MsgInvalidCredentials)
	}

	now := s.now()
	id, err := s.sessions.Create(ctx, &domain.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}, s.sessionTTL)
	if err != nil {
		return nil, err
	}

	metrics.SessionsTotal.WithLabelValues("login").Inc()
	s.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user logged in")

	return &ports.LoginResult{SessionID: id, User: user}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.Auth(domain.MsgNotLoggedIn)
	}
	return s.sessions.Get(ctx, sessionID)
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.Auth(domain.MsgNotLoggedIn)
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return err
	}
	metrics.SessionsTotal.WithLabelValues("logout").Inc()
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
