package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// Store implements ports.BlobStore on Redis. Payloads live under
// <prefix>blob:<id>; a ZSET index keyed by expiry score supports listing
// with lazy cleanup of expired entries.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.BlobStore = (*Store)(nil)

// NewStore creates a blob store from an existing client.
func NewStore(client *backend.Client, opts ...Option) *Store {
	s := newSettings(opts)
	return &Store{
		client: client,
		prefix: s.prefix,
		ttl:    s.ttl,
	}
}

func (s *Store) key(id string) string {
	return s.prefix + "blob:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "blob:index"
}

// Get retrieves the payload stored under id.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get blob from redis: %w", err)
	}
	return []byte(val), nil
}

// Put stores data under id. Value and index entry are written in one
// pipeline so the index never references a missing blob for long.
func (s *Store) Put(ctx context.Context, id string, data []byte) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.score(), Member: id})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save blob to redis: %w", err)
	}
	return nil
}

// Has reports whether a payload exists under id.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blob in redis: %w", err)
	}
	return n > 0, nil
}

// List returns all stored identifiers, pruning index entries whose TTL
// has passed.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := listIndex(ctx, s.client, s.indexKey())
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	return ids, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) score() float64 {
	return score(s.ttl)
}

// score computes the index expiry score: now+ttl, or farFuture when
// entries never expire.
func score(ttl time.Duration) float64 {
	if ttl == 0 {
		return farFuture
	}
	return float64(time.Now().Add(ttl).Unix())
}

// listIndex prunes expired members and returns the rest, sorted.
func listIndex(ctx context.Context, client *backend.Client, key string) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := client.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, err
	}

	members, err := client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members) // Deterministic order
	return members, nil
}
