package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "628")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "628", &Session{Stage: StageAwaitingName}))

	sess, err := store.Get(ctx, "628")
	require.NoError(t, err)
	assert.Equal(t, "628", sess.SenderID)
	assert.Equal(t, StageAwaitingName, sess.Stage)
	assert.False(t, sess.UpdatedAt.IsZero())

	require.NoError(t, store.Clear(ctx, "628"))
	_, err = store.Get(ctx, "628")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_All(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", &Session{Stage: StageAwaitingName}))
	require.NoError(t, store.Set(ctx, "b", &Session{Stage: StageAwaitingName}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRedisStore_Lifecycle(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewRedisStore(client, nil, time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, "628")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "628", &Session{Stage: StageAwaitingName}))

	sess, err := store.Get(ctx, "628")
	require.NoError(t, err)
	assert.Equal(t, "628", sess.SenderID)
	assert.Equal(t, StageAwaitingName, sess.Stage)

	// the session key carries the configured TTL
	assert.Greater(t, srv.TTL("sender:session:628"), time.Duration(0))

	require.NoError(t, store.Clear(ctx, "628"))
	_, err = store.Get(ctx, "628")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Lock(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewRedisStore(client, nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Lock(ctx, "628"))
	assert.ErrorIs(t, store.Lock(ctx, "628"), ErrLocked)

	store.Unlock(ctx, "628")
	assert.NoError(t, store.Lock(ctx, "628"))
}

func TestCleaner_ClearsStaleSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale", &Session{Stage: StageAwaitingName}))
	require.NoError(t, store.Set(ctx, "fresh", &Session{Stage: StageAwaitingName}))

	// age the first session past the TTL
	store.mu.Lock()
	store.sessions["stale"].UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	store.mu.Unlock()

	cleaner := NewCleaner(store, nil, time.Hour, time.Minute)
	cleaner.cleanup(ctx, store)

	_, err := store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}
