package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
	"github.com/pawtrail/dogwalk-service/internal/infrastructure/db/memory"
)

func newTestAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewAuthService(store.Users(), memory.NewSessionStore(), time.Hour, zerolog.Nop()), store
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "frank",
		Email:    "frank@example.com",
		Password: "pw123",
		Role:     domain.RoleWalker,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if user.Role != domain.RoleWalker {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	cases := []ports.RegisterInput{
		{Username: "", Email: "a@example.com", Password: "p", Role: domain.RoleOwner},
		{Username: "a", Email: "", Password: "p", Role: domain.RoleOwner},
		{Username: "a", Email: "a@example.com", Password: "", Role: domain.RoleOwner},
		{Username: "a", Email: "not-an-email", Password: "p", Role: domain.RoleOwner},
		{Username: "a", Email: "a@example.com", Password: "p", Role: "admin"},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Register(%+v): expected ErrValidation, got %v", in, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice123",
		Email:    "new@example.com",
		Password: "pw",
		Role:     domain.RoleOwner,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate username, got %v", err)
	}
}

func TestAuthService_RegisterThenAuthenticate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, ports.RegisterInput{
		Username: "grace",
		Email:    "grace@example.com",
		Password: "s3cret",
		Role:     domain.RoleOwner,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Authenticate(ctx, "grace", "s3cret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if res.SessionID == "" {
		t.Fatalf("expected a session id")
	}
	if res.User.ID != user.ID || res.User.Role != user.Role {
		t.Fatalf("expected user %d/%s, got %d/%s", user.ID, user.Role, res.User.ID, res.User.Role)
	}

	sess, err := svc.CurrentUser(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("current user failed: %v", err)
	}
	if sess.UserID != user.ID || sess.Username != "grace" || sess.Role != domain.RoleOwner {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestAuthService_Authenticate_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	cases := []struct{ username, password string }{
		{"alice123", "wrong"},
		{"nobody", "hashed123"},
		{"", ""},
		{"alice123", "hashed12"},
	}
	for _, c := range cases {
		_, err := svc.Authenticate(context.Background(), c.username, c.password)
		if !errors.Is(err, domain.ErrAuth) {
			t.Errorf("Authenticate(%q): expected ErrAuth, got %v", c.username, err)
			continue
		}
		if domain.Message(err) != domain.MsgInvalidCredentials {
			t.Errorf("unexpected message %q", domain.Message(err))
		}
	}
}

func TestAuthService_Logout_DestroysSession(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Authenticate(ctx, "alice123", "hashed123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if err := svc.Logout(ctx, res.SessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.CurrentUser(ctx, res.SessionID); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth after logout, got %v", err)
	}
	if err := svc.Logout(ctx, ""); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth for empty session, got %v", err)
	}
}

func TestAuthService_ListUsers(t *testing.T) {
	svc, _ := newTestAuthService(t)

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 5 {
		t.Fatalf("expected 5 users, got %d", len(users))
	}
	if users[0].Username != "alice123" {
		t.Fatalf("expected users ordered by id, got %s first", users[0].Username)
	}
}
