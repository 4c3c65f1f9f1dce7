package ports

import "context"

// BlobStore defines the interface for persisting content-addressed payloads.
// Keys are canonical content identifiers; the store treats them as opaque and
// never re-derives them. Hashing and integrity verification live above this
// interface, in the cas package, so every backend gets them for free.
type BlobStore interface {
	// Get retrieves the payload stored under id.
	// Returns domain.ErrContentNotFound if nothing is stored under it.
	Get(ctx context.Context, id string) ([]byte, error)

	// Put stores data under id, overwriting any previous payload. Writes of
	// identical content are idempotent by construction.
	Put(ctx context.Context, id string, data []byte) error

	// Has reports whether a payload exists under id without fetching it.
	Has(ctx context.Context, id string) (bool, error)

	// List returns all stored identifiers. Used by management surfaces.
	List(ctx context.Context) ([]string, error)
}
