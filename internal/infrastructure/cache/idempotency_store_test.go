package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/cache"
)

func newStore(t *testing.T) (*cache.IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewIdempotencyStore(client, "test:", time.Minute), mr
}

func TestIdempotencyStore_ReserveOnlyOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "k1", "fp")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "k1", "fp")
	require.NoError(t, err)
	assert.False(t, ok, "la segunda reserva debe fallar")

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cache.StatePending, got.State)
	assert.Equal(t, "fp", got.Fingerprint)
}

func TestIdempotencyStore_CompleteAndGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k1", "fp")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "k1", cache.IdempotentResponse{
		Fingerprint: "fp",
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"id":"x"}`),
	}))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cache.StateDone, got.State)
	assert.Equal(t, 201, got.StatusCode)
	assert.JSONEq(t, `{"id":"x"}`, string(got.Body))
}

func TestIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k1", "fp")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k1"))

	ok, err := store.Reserve(ctx, "k1", "fp")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_Expires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k1", "fp")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyStore_RedisDown(t *testing.T) {
	store, mr := newStore(t)
	mr.Close()

	_, err := store.Reserve(context.Background(), "k1", "fp")
	assert.Error(t, err)
}
