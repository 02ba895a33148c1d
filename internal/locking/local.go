package locking

import (
	"context"
	"sync"
)

type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates an in-process locker with the same fail-fast
// semantics as the Redis one. It only serializes requests served by this
// process; the unique slot index still protects multi-instance deployments.
func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]struct{})}
}

func (l *localLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if _, busy := l.held[key]; busy {
		l.mu.Unlock()
		return ErrLockNotAcquired
	}
	l.held[key] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()

	return fn(ctx)
}
