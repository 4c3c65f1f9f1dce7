// Package redis backs the blob store, the three definition registries and
// the distributed locker with Redis, so multiple engine replicas can share
// one mutable backend. Every adapter takes an existing client, letting a
// deployment pool one connection set across all of them.
package redis

import (
	"time"

	backend "github.com/redis/go-redis/v9"
)

// defaultPrefix namespaces every key this package writes.
const defaultPrefix = "sluice:"

// farFuture is the index score used when entries never expire.
// 2100-01-01, far enough for now.
const farFuture = 4102444800

// settings are shared by all adapters in this package.
type settings struct {
	prefix string
	ttl    time.Duration
}

// Option configures a Redis adapter.
type Option func(*settings)

// WithPrefix replaces the key prefix (default "sluice:"). Useful for
// multi-tenant Redis or test isolation.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithTTL sets an expiration on stored entries. Zero (the default) means
// entries never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		s.ttl = ttl
	}
}

func newSettings(opts []Option) settings {
	s := settings{prefix: defaultPrefix}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Connect builds a client for the common single-address case. Adapters
// accept any *redis.Client, so deployments with sentinel or cluster
// setups can construct their own.
func Connect(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}
