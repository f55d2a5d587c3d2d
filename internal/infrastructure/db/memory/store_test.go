package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Seed(context.Background()))
	return s
}

func userID(t *testing.T, s *Store, username string) int64 {
	t.Helper()
	u, err := s.Users().FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return u.ID
}

func TestSeed_LoadsFixture(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	dogs, err := s.Dogs().List(ctx)
	require.NoError(t, err)
	require.Len(t, dogs, 5)
	assert.Equal(t, "Max", dogs[0].Name)
	assert.Equal(t, "alice123", dogs[0].OwnerUsername)

	open, err := s.Walks().ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "Max", open[0].DogName)
	assert.Equal(t, "Lucy", open[1].DogName)
	for _, v := range open {
		assert.Equal(t, domain.WalkOpen, v.Status)
	}
}

func TestUsers_CreateDuplicate(t *testing.T) {
	s := seededStore(t)

	_, err := s.Users().Create(context.Background(), &domain.User{
		Username: "alice123", Email: "other@example.com", Password: "x", Role: domain.RoleOwner,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Users().Create(context.Background(), &domain.User{
		Username: "other", Email: "alice@example.com", Password: "x", Role: domain.RoleOwner,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUsers_UniquenessIsCaseSensitive(t *testing.T) {
	s := seededStore(t)

	created, err := s.Users().Create(context.Background(), &domain.User{
		Username: "Alice123", Email: "ALICE@example.com", Password: "x", Role: domain.RoleOwner,
	})
	require.NoError(t, err)

	found, err := s.Users().FindByUsername(context.Background(), "Alice123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.NotEqual(t, userID(t, s, "alice123"), created.ID)
}

func TestWalks_CreateUnknownDog(t *testing.T) {
	s := NewStore()
	_, err := s.Walks().Create(context.Background(), ports.NewWalkRequest{DogID: 42, DurationMinutes: 30, Location: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWalks_ListOpenByOwnerNewestFirst(t *testing.T) {
	s := seededStore(t)

	out, err := s.Walks().ListOpenByOwner(context.Background(), userID(t, s, "alice123"))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Lucy", out[0].DogName)
	assert.Equal(t, "Max", out[1].DogName)

	out, err = s.Walks().ListOpenByOwner(context.Background(), userID(t, s, "carol123"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWalks_AcceptIsCompareAndSet(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	bob := userID(t, s, "bobwalker")
	emily := userID(t, s, "emilywalker")

	app, err := s.Walks().Accept(ctx, 1, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, app.Status)

	_, err = s.Walks().Accept(ctx, 1, emily)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.Walks().Accept(ctx, 999, emily)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v, err := s.Walks().FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.WalkAccepted, v.Status)
}

func TestWalks_ConcurrentAcceptHasOneWinner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	owner, err := s.Users().Create(ctx, &domain.User{Username: "o", Email: "o@example.com", Password: "p", Role: domain.RoleOwner})
	require.NoError(t, err)
	dog, err := s.AddDog(owner.ID, "Rex", domain.SizeLarge)
	require.NoError(t, err)
	req, err := s.Walks().Create(ctx, ports.NewWalkRequest{DogID: dog.ID, RequestedTime: time.Now(), DurationMinutes: 20, Location: "park"})
	require.NoError(t, err)

	const walkers = 32
	ids := make([]int64, walkers)
	for i := range ids {
		u, err := s.Users().Create(ctx, &domain.User{
			Username: fmt.Sprintf("walker%d", i),
			Email:    fmt.Sprintf("walker%d@example.com", i),
			Password: "p",
			Role:     domain.RoleWalker,
		})
		require.NoError(t, err)
		ids[i] = u.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(walkerID int64) {
			defer wg.Done()
			_, err := s.Walks().Accept(ctx, req.ID, walkerID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, walkers-1, conflicts)

	accepted := 0
	for _, a := range s.applications {
		if a.RequestID == req.ID && a.Status == domain.ApplicationAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestWalks_Transition(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	// Bella's walk is accepted in the fixture.
	prev, err := s.Walks().Transition(ctx, 2, domain.SourcesFor(domain.WalkCompleted), domain.WalkCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.WalkAccepted, prev)

	_, err = s.Walks().Transition(ctx, 2, domain.SourcesFor(domain.WalkCancelled), domain.WalkCancelled)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.Walks().Transition(ctx, 1, domain.SourcesFor(domain.WalkCompleted), domain.WalkCompleted)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.Walks().Transition(ctx, 77, domain.SourcesFor(domain.WalkCancelled), domain.WalkCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWalks_CancelledContextIsUnavailable(t *testing.T) {
	s := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Walks().Accept(ctx, 1, userID(t, s, "bobwalker"))
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestWalkerSummary(t *testing.T) {
	s := seededStore(t)

	out, err := s.Summary().WalkerSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	bob, emily := out[0], out[1]
	assert.Equal(t, "bobwalker", bob.WalkerUsername)
	assert.Equal(t, 1, bob.TotalRatings)
	require.NotNil(t, bob.AverageRating)
	assert.InDelta(t, 5.0, *bob.AverageRating, 0.0001)
	assert.Equal(t, 1, bob.CompletedWalks)

	assert.Equal(t, "emilywalker", emily.WalkerUsername)
	assert.Zero(t, emily.TotalRatings)
	assert.Nil(t, emily.AverageRating)
	assert.Zero(t, emily.CompletedWalks)
}

func TestAddRating_Validation(t *testing.T) {
	s := seededStore(t)
	assert.ErrorIs(t, s.AddRating(1, 2, 1, 6), domain.ErrValidation)
	assert.ErrorIs(t, s.AddRating(99, 2, 1, 4), domain.ErrNotFound)
	assert.ErrorIs(t, s.AddRating(4, 2, 3, 4), domain.ErrValidation)
}
