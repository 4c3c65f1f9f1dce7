package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It lets management surfaces serialize read-modify-write sequences on shared
// registries (e.g. toggling a unit stored in Redis) across replicas.
type DistributedLocker interface {
	// Lock attempts to acquire a distributed lock for the given key (e.g., a unit name).
	// It blocks until the lock is acquired, the context is canceled, or the TTL expires (implementation specific).
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
