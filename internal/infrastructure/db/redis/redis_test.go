package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	id, err := store.Create(ctx, &domain.Session{
		UserID:   2,
		Username: "bobwalker",
		Role:     domain.RoleWalker,
	}, time.Hour)
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+id))
	assert.Equal(t, time.Hour, mr.TTL("session:"+id))

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, int64(2), sess.UserID)
	assert.Equal(t, "bobwalker", sess.Username)
	assert.Equal(t, domain.RoleWalker, sess.Role)

	require.NoError(t, store.Destroy(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	id, err := store.Create(ctx, &domain.Session{UserID: 1, Role: domain.RoleOwner}, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestSessionStore_ServerDownIsUnavailable(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewSessionStore(client)
	mr.Close()

	_, err := store.Get(context.Background(), "whatever")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestIdempotencyStore(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, claimed, err := store.Claim(ctx, "1:abc")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.True(t, mr.Exists("idem:walk:1:abc"))

	id, claimed, err := store.Claim(ctx, "1:abc")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Zero(t, id)

	require.NoError(t, store.Complete(ctx, "1:abc", 42))
	assert.Equal(t, 24*time.Hour, mr.TTL("idem:walk:1:abc"))

	id, claimed, err = store.Claim(ctx, "1:abc")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, int64(42), id)
}

func TestIdempotencyStore_ReleaseFreesKey(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, claimed, err := store.Claim(ctx, "1:retry")
	require.NoError(t, err)
	require.True(t, claimed)
	assert.Equal(t, time.Minute, mr.TTL("idem:walk:1:retry"))

	require.NoError(t, store.Release(ctx, "1:retry"))
	assert.False(t, mr.Exists("idem:walk:1:retry"))

	_, claimed, err = store.Claim(ctx, "1:retry")
	require.NoError(t, err)
	assert.True(t, claimed)
}
