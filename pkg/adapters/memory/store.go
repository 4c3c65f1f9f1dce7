package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
)

// Store implements ports.BlobStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory blob store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Get retrieves the payload stored under id.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[id]
	if !ok {
		return nil, domain.ErrContentNotFound
	}

	// Copy on read so the caller can't mutate stored bytes through the slice.
	ret := make([]byte, len(data))
	copy(ret, data)
	return ret, nil
}

// Put stores the payload under id.
func (s *Store) Put(ctx context.Context, id string, data []byte) error {
	// Copy to ensure isolation, similar to serialization
	copied := make([]byte, len(data))
	copy(copied, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Has reports whether a payload exists under id.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok, nil
}

// List returns all stored identifiers.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}
