package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/sluice/pkg/ports"
)

// unlockScript releases a lock only if the holder's token still matches,
// so a lock that expired and was re-acquired elsewhere is never released
// by the previous holder.
const unlockScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// Locker implements ports.DistributedLocker using Redis SET NX with a
// TTL. Management surfaces use it to serialize read-modify-write
// sequences on shared registries across replicas.
type Locker struct {
	client *backend.Client
	prefix string
}

var _ ports.DistributedLocker = (*Locker)(nil)

// NewLocker creates a Redis locker from an existing client.
func NewLocker(client *backend.Client, opts ...Option) *Locker {
	s := newSettings(opts)
	return &Locker{client: client, prefix: s.prefix}
}

// Lock acquires the lock for key, polling until it succeeds or ctx ends.
// The TTL bounds how long a crashed holder can wedge the key.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	// Token identifies this holder; unlockScript checks it before deleting.
	token := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		success, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if success {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			// Retry.
		}
	}
}
