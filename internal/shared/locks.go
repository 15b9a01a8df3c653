package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionLock serialises critical sections per session using redis SETNX.
// Finalization holds the lock so two racing finalize calls for the same
// session cannot both drain the cart.
type SessionLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionLock constructs a SessionLock with the given lease TTL.
func NewSessionLock(client *redis.Client, ttl time.Duration) *SessionLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SessionLock{client: client, ttl: ttl}
}

func sessionLockKey(session string) string {
	return fmt.Sprintf("cartage:session:%s:finalize", session)
}

// Acquire takes the lock for session. Returns ErrConflict when already held.
func (l *SessionLock) Acquire(ctx context.Context, session string) error {
	if l == nil || l.client == nil {
		return nil
	}
	ok, err := l.client.SetNX(ctx, sessionLockKey(session), "1", l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// Release frees the lock for session.
func (l *SessionLock) Release(ctx context.Context, session string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, sessionLockKey(session)).Err()
}
