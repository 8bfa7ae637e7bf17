package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

// unlockLua deletes a lock key only if its value matches the caller's unique
// token. This prevents one holder from accidentally releasing another
// holder's lock.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// refreshLua extends the TTL of a lock only if the caller still owns it.
const refreshLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`

// LockManager implements domain.LockManager using Redis SETNX with a TTL and
// Lua-based conditional unlock and refresh.
type LockManager struct {
	rdb       *redis.Client
	unlockSc  *redis.Script
	refreshSc *redis.Script
}

// NewLockManager creates a LockManager backed by the given Client.
func NewLockManager(c *Client) *LockManager {
	return &LockManager{
		rdb:       c.Underlying(),
		unlockSc:  redis.NewScript(unlockLua),
		refreshSc: redis.NewScript(refreshLua),
	}
}

func lockKey(name string) string {
	return "lock:" + name
}

// Acquire attempts to obtain a distributed lock with the given TTL. On
// success it returns the ownership token needed to release or refresh the
// lock. It returns domain.ErrLockHeld if another party holds the lock.
func (lm *LockManager) Acquire(ctx context.Context, name string, ttl time.Duration) (string, error) {
	token := uuid.New().String()

	ok, err := lm.rdb.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis: acquire lock %s: %w", name, err)
	}
	if !ok {
		return "", domain.ErrLockHeld
	}
	return token, nil
}

// Release frees the lock if the token still owns it. Releasing a lock that
// has expired or changed owners is a no-op.
func (lm *LockManager) Release(ctx context.Context, name, token string) error {
	if err := lm.unlockSc.Run(ctx, lm.rdb, []string{lockKey(name)}, token).Err(); err != nil {
		return fmt.Errorf("redis: release lock %s: %w", name, err)
	}
	return nil
}

// Refresh extends the TTL of a held lock. It returns domain.ErrLockHeld if
// the lock is no longer owned by the token.
func (lm *LockManager) Refresh(ctx context.Context, name, token string, ttl time.Duration) error {
	res, err := lm.refreshSc.Run(ctx, lm.rdb, []string{lockKey(name)}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("redis: refresh lock %s: %w", name, err)
	}
	if res == 0 {
		return domain.ErrLockHeld
	}
	return nil
}

// Compile-time interface check.
var _ domain.LockManager = (*LockManager)(nil)
