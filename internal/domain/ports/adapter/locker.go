package adapter

import (
	"context"
	"time"
)

// Locker is a keyed mutual-exclusion primitive with expiring leases.
// TryLock returns domain.ErrLockNotAcquired when the key stays held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
