package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld indicates another recomputation holds the period lock.
var ErrLockHeld = errors.New("period lock already held")

// PeriodLockKey builds redis keys for per-period critical sections.
func PeriodLockKey(tenantID, periodID int64) string {
	return fmt.Sprintf("ledger:tenant:%d:period:%d:lock", tenantID, periodID)
}

// RecalcLock serialises balance recomputation per (tenant, period) across
// processes using a redis SET NX token.
type RecalcLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecalcLock constructs a lock helper with the given hold TTL.
func NewRecalcLock(client *redis.Client, ttl time.Duration) *RecalcLock {
	return &RecalcLock{client: client, ttl: ttl}
}

// Acquire takes the lock, returning the release token. ErrLockHeld is
// returned when a concurrent run owns it.
func (l *RecalcLock) Acquire(ctx context.Context, tenantID, periodID int64) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, PeriodLockKey(tenantID, periodID), token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

// releaseScript deletes the key only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Release drops the lock when the token still matches; an expired or stolen
// lock is left alone.
func (l *RecalcLock) Release(ctx context.Context, tenantID, periodID int64, token string) error {
	return releaseScript.Run(ctx, l.client, []string{PeriodLockKey(tenantID, periodID)}, token).Err()
}
