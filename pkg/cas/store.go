package cas

import (
	"context"
	"fmt"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// Store layers content addressing over a ports.BlobStore backend. Put hashes
// the payload to derive its key; Resolve re-hashes what the backend returns
// and fails with a domain.IntegrityError when the bytes have drifted from
// the identifier they were stored under.
type Store struct {
	backend ports.BlobStore
	verify  bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithoutVerification disables the re-hash on Resolve. Only worth it when
// the backend is trusted and the payloads are large.
func WithoutVerification() StoreOption {
	return func(s *Store) {
		s.verify = false
	}
}

// NewStore wraps a blob backend with content addressing. Verification on
// Resolve is on by default.
func NewStore(backend ports.BlobStore, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		verify:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a payload and returns its canonical identifier. Storing the
// same bytes twice yields the same identifier and is harmless.
func (s *Store) Put(ctx context.Context, data []byte) (ContentID, error) {
	id := Generate(data)
	if err := s.backend.Put(ctx, string(id), data); err != nil {
		return "", fmt.Errorf("storing %s: %w", id, err)
	}
	return id, nil
}

// Resolve fetches the payload for an identifier. Returns
// domain.ErrContentNotFound (wrapped) when nothing is stored under id, and
// a *domain.IntegrityError when the stored bytes no longer hash to id.
func (s *Store) Resolve(ctx context.Context, id ContentID) ([]byte, error) {
	data, err := s.backend.Get(ctx, string(id))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id, err)
	}
	if s.verify {
		if computed := Generate(data); computed != id {
			return nil, &domain.IntegrityError{ID: string(id), Computed: string(computed)}
		}
	}
	return data, nil
}

// Has reports whether a payload exists for id without fetching it.
func (s *Store) Has(ctx context.Context, id ContentID) (bool, error) {
	return s.backend.Has(ctx, string(id))
}

// List returns the identifiers of all stored payloads.
func (s *Store) List(ctx context.Context) ([]ContentID, error) {
	keys, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]ContentID, 0, len(keys))
	for _, k := range keys {
		if Valid(k) {
			ids = append(ids, ContentID(k))
		}
	}
	return ids, nil
}
