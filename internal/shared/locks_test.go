package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*SessionLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionLock(client, time.Minute), mr
}

func TestSessionLockAcquireRelease(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, "alice"))
	require.ErrorIs(t, lock.Acquire(ctx, "alice"), ErrConflict)

	// A different session is unaffected.
	require.NoError(t, lock.Acquire(ctx, "bob"))

	require.NoError(t, lock.Release(ctx, "alice"))
	require.NoError(t, lock.Acquire(ctx, "alice"))
}

func TestSessionLockExpires(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, "alice"))

	// A crashed holder's lease lapses rather than wedging the session.
	mr.FastForward(2 * time.Minute)
	require.NoError(t, lock.Acquire(ctx, "alice"))
}

func TestSessionLockNilClient(t *testing.T) {
	var lock *SessionLock
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, "alice"))
	require.NoError(t, lock.Release(ctx, "alice"))
}
