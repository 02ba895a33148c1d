package locking

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKey(t *testing.T) {
	at := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "lock:slot:pro-1:1893488400000", SlotKey("pro-1", at))
}

func exerciseLocker(t *testing.T, l Locker, key string) {
	t.Helper()
	ctx := context.Background()

	err := l.WithLock(ctx, key, func(ctx context.Context) error {
		inner := l.WithLock(ctx, key, func(context.Context) error { return nil })
		assert.ErrorIs(t, inner, ErrLockNotAcquired)

		other := l.WithLock(ctx, key+":other", func(context.Context) error { return nil })
		assert.NoError(t, other)
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = l.WithLock(ctx, key, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	// released after an error as well
	assert.NoError(t, l.WithLock(ctx, key, func(context.Context) error { return nil }))
}

func TestLocalLocker(t *testing.T) {
	exerciseLocker(t, NewLocalLocker(), "lock:slot:test")
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client, err := NewRedisClient(addr, "", "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseLocker(t, NewRedisLocker(client, 2*time.Second), "lock:slot:test:"+time.Now().Format(time.RFC3339Nano))
}

// unlockFailsHook grants every SETNX and fails the unlock script without
// touching the network.
type unlockFailsHook struct{}

func (unlockFailsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled")
	}
}

func (unlockFailsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if strings.EqualFold(cmd.Name(), "setnx") || strings.EqualFold(cmd.Name(), "set") {
			if c, ok := cmd.(*redis.BoolCmd); ok {
				c.SetVal(true)
				return nil
			}
		}
		err := errors.New("READONLY You can't write against a read only replica.")
		cmd.SetErr(err)
		return err
	}
}

func (unlockFailsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisLockerReleaseFailureUsesRequestLogger(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(unlockFailsHook{})
	t.Cleanup(func() { _ = client.Close() })

	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("request_id", "req-42").Logger()
	ctx := logger.WithContext(context.Background())

	err := NewRedisLocker(client, time.Second).WithLock(ctx, "lock:slot:pro-1:0", func(context.Context) error { return nil })
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "slot lock release failed")
	assert.Contains(t, out, `"request_id":"req-42"`)
	assert.Contains(t, out, `"key":"lock:slot:pro-1:0"`)
}
