package usercache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

func testCache(t *testing.T) *Cache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCache(client, time.Minute)
}

func TestCache_RoundTrip(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	user := &domain.User{
		ID:             1,
		SenderID:       "628111",
		Name:           "Alice",
		RegisteredDate: "2025-03-15",
		RegisteredTime: "14:30:00",
	}

	require.NoError(t, cache.Set(ctx, user))

	got, err := cache.Get(ctx, "628111")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user, got)
}

func TestCache_MissAndInvalidate(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	got, err := cache.Get(ctx, "628999")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, &domain.User{SenderID: "628111", Name: "Alice"}))
	require.NoError(t, cache.Invalidate(ctx, "628111"))

	got, err = cache.Get(ctx, "628111")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_NilIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	got, err := cache.Get(ctx, "628111")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, cache.Set(ctx, &domain.User{SenderID: "628111"}))
	assert.NoError(t, cache.Invalidate(ctx, "628111"))
}
