package locking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrLockNotAcquired = errors.New("slot lock not acquired")
)

// Locker guards the check-then-write critical section of a booking slot.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// SlotKey names the lock for a professional's slot at a given instant.
func SlotKey(professionalID string, at time.Time) string {
	return fmt.Sprintf("lock:slot:%s:%d", professionalID, at.UnixMilli())
}
