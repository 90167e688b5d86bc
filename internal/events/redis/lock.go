package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evento/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrLockNotAcquired = errors.New("event lock not acquired")

// unlockScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is never released by us.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis serializes writers of one event across service instances. The
// version check in the database stays authoritative; the lock only cuts
// down on save conflicts under contention.
type Redis struct {
	Client        *redis.Client
	Logger        *logger.Logger
	TTL           time.Duration
	RetryInterval time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Redis{
		Client:        client,
		Logger:        log,
		TTL:           ttl,
		RetryInterval: 25 * time.Millisecond,
	}
}

func lockKey(eventID string) string {
	return "event_lock:" + eventID
}

// LockEvent makes a single attempt. On success it returns the token that
// must be passed to UnlockEvent.
func (r *Redis) LockEvent(ctx context.Context, eventID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.Client.SetNX(ctx, lockKey(eventID), token, r.TTL).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// UnlockEvent releases the lock if token still owns it
func (r *Redis) UnlockEvent(ctx context.Context, eventID, token string) error {
	return unlockScript.Run(ctx, r.Client, []string{lockKey(eventID)}, token).Err()
}

// Acquire blocks until the event lock is taken or ctx is done. The returned
// release func is safe to call more than once.
func (r *Redis) Acquire(ctx context.Context, eventID string) (func(), error) {
	ticker := time.NewTicker(r.RetryInterval)
	defer ticker.Stop()

	for {
		token, ok, err := r.LockEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock event %s: %w", eventID, err)
		}
		if ok {
			released := false
			return func() {
				if released {
					return
				}
				released = true
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := r.UnlockEvent(releaseCtx, eventID, token); err != nil {
					r.Logger.Warn("REDIS", fmt.Sprintf("Failed to release lock for event %s: %v", eventID, err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w for %s: %v", ErrLockNotAcquired, eventID, ctx.Err())
		case <-ticker.C:
		}
	}
}
