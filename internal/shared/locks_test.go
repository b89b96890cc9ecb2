package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*RecalcLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRecalcLock(client, time.Minute), mr
}

func TestRecalcLockAcquireRelease(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	token, err := lock.Acquire(ctx, 7, 101)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, mr.Exists(PeriodLockKey(7, 101)))

	_, err = lock.Acquire(ctx, 7, 101)
	require.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release(ctx, 7, 101, token))
	require.False(t, mr.Exists(PeriodLockKey(7, 101)))

	_, err = lock.Acquire(ctx, 7, 101)
	require.NoError(t, err)
}

func TestRecalcLockIsScopedPerPeriod(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	_, err := lock.Acquire(ctx, 7, 101)
	require.NoError(t, err)

	// sibling period and sibling tenant are independent critical sections
	_, err = lock.Acquire(ctx, 7, 102)
	require.NoError(t, err)
	_, err = lock.Acquire(ctx, 8, 101)
	require.NoError(t, err)
}

func TestRecalcLockReleaseRequiresMatchingToken(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	token, err := lock.Acquire(ctx, 7, 101)
	require.NoError(t, err)

	require.NoError(t, lock.Release(ctx, 7, 101, "stale-token"))
	require.True(t, mr.Exists(PeriodLockKey(7, 101)))

	require.NoError(t, lock.Release(ctx, 7, 101, token))
	require.False(t, mr.Exists(PeriodLockKey(7, 101)))
}

func TestRecalcLockExpires(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	_, err := lock.Acquire(ctx, 7, 101)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = lock.Acquire(ctx, 7, 101)
	require.NoError(t, err)
}
