package idempotency

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestBeginCompleteReplay(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	first, err := store.Begin(ctx, "user-1", "abc")
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	_, err = store.Begin(ctx, "user-1", "abc")
	assert.ErrorIs(t, err, ErrInProgress)

	require.NoError(t, first.Complete(ctx, 42))
	val, err := mr.Get(cacheKey("user-1", "abc"))
	require.NoError(t, err)
	assert.Equal(t, "42", val)
	assert.Equal(t, time.Hour, mr.TTL(cacheKey("user-1", "abc")))

	again, err := store.Begin(ctx, "user-1", "abc")
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, uint(42), again.OrderID)

	other, err := store.Begin(ctx, "user-2", "abc")
	require.NoError(t, err)
	assert.False(t, other.Replayed, "keys are scoped per user")
}

func TestUnfinishedClaimLapses(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	key := cacheKey("user-1", "lost")

	claim, err := store.Begin(ctx, "user-1", "lost")
	require.NoError(t, err)
	assert.Equal(t, PendingTTL, mr.TTL(key))

	mr.SetError("connection reset")
	assert.Error(t, claim.Complete(ctx, 9))
	mr.SetError("")

	_, err = store.Begin(ctx, "user-1", "lost")
	assert.ErrorIs(t, err, ErrInProgress)

	mr.FastForward(PendingTTL + time.Second)
	retry, err := store.Begin(ctx, "user-1", "lost")
	require.NoError(t, err)
	assert.False(t, retry.Replayed)
}

func TestPendingTTLNeverExceedsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewStore(client, 30*time.Second)

	_, err := store.Begin(context.Background(), "user-1", "short")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL(cacheKey("user-1", "short")))
}

func TestAbortFreesKey(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	claim, err := store.Begin(ctx, "user-1", "retry-me")
	require.NoError(t, err)
	require.NoError(t, claim.Abort(ctx))
	assert.False(t, mr.Exists(cacheKey("user-1", "retry-me")))

	claim, err = store.Begin(ctx, "user-1", "retry-me")
	require.NoError(t, err)
	assert.False(t, claim.Replayed)
}

func TestAbortLeavesSomeoneElsesClaim(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	stale, err := store.Begin(ctx, "user-1", "k")
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	fresh, err := store.Begin(ctx, "user-1", "k")
	require.NoError(t, err)
	require.NoError(t, stale.Abort(ctx))
	assert.True(t, mr.Exists(cacheKey("user-1", "k")))
	require.NoError(t, fresh.Complete(ctx, 7))
}

func TestEmptyKeyAndNilStore(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	claim, err := store.Begin(ctx, "user-1", "  ")
	require.NoError(t, err)
	assert.False(t, claim.Replayed)
	assert.NoError(t, claim.Complete(ctx, 1))
	assert.NoError(t, claim.Abort(ctx))

	var disabled *Store
	assert.Nil(t, NewStore(nil, time.Hour))
	claim, err = disabled.Begin(ctx, "user-1", "abc")
	require.NoError(t, err)
	assert.NoError(t, claim.Complete(ctx, 1))

	_, err = store.Begin(ctx, "user-1", strings.Repeat("x", 129))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
