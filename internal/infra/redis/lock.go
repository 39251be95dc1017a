package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/ports/adapter"
)

var _ adapter.Locker = (*RedisLocker)(nil)

const (
	defaultLockRetries    = 5
	defaultLockRetryDelay = 50 * time.Millisecond
)

type RedisLocker struct {
	cli        RedisClient
	retries    int
	retryDelay time.Duration
}

// NewLocker makes up to retries SETNX attempts spaced by retryDelay.
// Non-positive values fall back to the defaults.
func NewLocker(c RedisClient, retries int, retryDelay time.Duration) *RedisLocker {
	if retries <= 0 {
		retries = defaultLockRetries
	}
	if retryDelay <= 0 {
		retryDelay = defaultLockRetryDelay
	}
	return &RedisLocker{cli: c, retries: retries, retryDelay: retryDelay}
}

// TryLock reports domain.ErrLockNotAcquired only when every attempt found the
// key held. A transport failure on any attempt is returned wrapped instead.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	for i := 0; i < l.retries; i++ {
		ok, err := l.cli.SetNX(ctx, key, token, ttl)
		if err == nil && ok {
			return token, nil
		}
		if err != nil {
			lastErr = err
		}
		if i == l.retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("redis setnx %s: %w", key, lastErr)
	}
	return "", domain.ErrLockNotAcquired
}

// Unlock is a no-op when the lock expired or was taken over by another token.
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.cli.CompareAndDelete(ctx, key, token)
	return err
}
