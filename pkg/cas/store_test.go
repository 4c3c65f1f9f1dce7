package cas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/sluice/pkg/domain"
)

// fakeBackend is a map-backed blob store whose contents tests can corrupt.
type fakeBackend struct {
	data map[string][]byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (f *fakeBackend) Get(ctx context.Context, id string) ([]byte, error) {
	data, ok := f.data[id]
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	return data, nil
}

func (f *fakeBackend) Put(ctx context.Context, id string, data []byte) error {
	f.data[id] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBackend) Has(ctx context.Context, id string) (bool, error) {
	_, ok := f.data[id]
	return ok, nil
}

func (f *fakeBackend) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.data))
	for id := range f.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newFakeBackend())

	t.Run("PutThenResolve", func(t *testing.T) {
		id, err := store.Put(ctx, []byte("hello"))
		require.NoError(t, err)

		data, err := store.Resolve(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("ResolveUnknown", func(t *testing.T) {
		_, err := store.Resolve(ctx, Generate([]byte("never stored")))
		assert.ErrorIs(t, err, domain.ErrContentNotFound)
	})

	t.Run("Has", func(t *testing.T) {
		id, err := store.Put(ctx, []byte("present"))
		require.NoError(t, err)

		ok, err := store.Has(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestStoreRoundTripProperty(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newFakeBackend())

	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(rt, "data")

		id, err := store.Put(ctx, data)
		if err != nil {
			rt.Fatalf("put: %v", err)
		}
		got, err := store.Resolve(ctx, id)
		if err != nil {
			rt.Fatalf("resolve: %v", err)
		}
		if string(got) != string(data) {
			rt.Fatalf("round trip mismatch: stored %d bytes, resolved %d", len(data), len(got))
		}
	})
}

func TestStoreIntegrity(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	store := NewStore(backend)

	id, err := store.Put(ctx, []byte("original"))
	require.NoError(t, err)

	// Corrupt the stored bytes behind the store's back.
	backend.data[string(id)] = []byte("tampered")

	t.Run("VerifiedResolveFails", func(t *testing.T) {
		_, err := store.Resolve(ctx, id)
		var integrityErr *domain.IntegrityError
		require.ErrorAs(t, err, &integrityErr)
		assert.Equal(t, string(id), integrityErr.ID)
		assert.Equal(t, string(Generate([]byte("tampered"))), integrityErr.Computed)
	})

	t.Run("UnverifiedResolvePassesThrough", func(t *testing.T) {
		loose := NewStore(backend, WithoutVerification())
		data, err := loose.Resolve(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("tampered"), data)
	})
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	store := NewStore(backend)

	id, err := store.Put(ctx, []byte("listed"))
	require.NoError(t, err)

	// Backends may hold foreign keys; List must skip them.
	backend.data["not-a-content-id"] = []byte("noise")

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)
	assert.NotContains(t, ids, ContentID("not-a-content-id"))
}
