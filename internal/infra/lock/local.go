// Package lock provides an in-process adapter.Locker for single-instance
// deployments without redis.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/ports/adapter"
)

var _ adapter.Locker = (*LocalLocker)(nil)

type entry struct {
	token   string
	expires time.Time
}

// LocalLocker mirrors RedisLocker semantics: token-guarded release and a TTL
// after which a held key may be taken over.
type LocalLocker struct {
	mu         sync.Mutex
	held       map[string]entry
	retries    int
	retryDelay time.Duration
	now        func() time.Time
}

func NewLocalLocker(retries int, retryDelay time.Duration) *LocalLocker {
	if retries <= 0 {
		retries = 1
	}
	if retryDelay <= 0 {
		retryDelay = 50 * time.Millisecond
	}
	return &LocalLocker{
		held:       make(map[string]entry),
		retries:    retries,
		retryDelay: retryDelay,
		now:        time.Now,
	}
}

func (l *LocalLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < l.retries; i++ {
		if l.acquire(key, token, ttl) {
			return token, nil
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
	return "", domain.ErrLockNotAcquired
}

func (l *LocalLocker) acquire(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return false
	}
	l.held[key] = entry{token: token, expires: now.Add(ttl)}
	return true
}

func (l *LocalLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.held[key]; ok && e.token == token {
		delete(l.held, key)
	}
	return nil
}
