package ports

import (
	"context"
	"testing"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBlobStoreContract runs a suite of tests to verify that a BlobStore
// implementation adheres to the defined interface contract.
func RunBlobStoreContract(t *testing.T, store BlobStore) {
	ctx := context.Background()
	// Keys are opaque to the store; any stable string works for the contract.
	id := "contract-test-blob"

	t.Run("Put and Get", func(t *testing.T) {
		payload := []byte("print(input.upper())")

		err := store.Put(ctx, id, payload)
		require.NoError(t, err, "Put should not return error")

		got, err := store.Get(ctx, id)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, payload, got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrContentNotFound)
	})

	t.Run("Put Is Idempotent", func(t *testing.T) {
		payload := []byte("same bytes")
		require.NoError(t, store.Put(ctx, id+"-idem", payload))
		require.NoError(t, store.Put(ctx, id+"-idem", payload))

		got, err := store.Get(ctx, id+"-idem")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("Has", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, id+"-has", []byte("x")))

		ok, err := store.Has(ctx, id+"-has")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Has(ctx, "non-existent-"+id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-list-1"
		id2 := id + "-list-2"
		require.NoError(t, store.Put(ctx, id1, []byte("a")))
		require.NoError(t, store.Put(ctx, id2, []byte("b")))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunUnitAdminContract runs a suite of tests to verify that a UnitAdmin
// implementation adheres to the defined interface contract.
func RunUnitAdminContract(t *testing.T, reg UnitAdmin) {
	ctx := context.Background()

	t.Run("Save and Lookup", func(t *testing.T) {
		unit := domain.Unit{
			Name:     "contract-upper",
			Source:   "print(input.upper())",
			Language: domain.LangPython,
			Enabled:  true,
		}
		require.NoError(t, reg.Save(ctx, unit))

		got, err := reg.Lookup(ctx, unit.Name)
		require.NoError(t, err)
		assert.Equal(t, unit.Name, got.Name)
		assert.Equal(t, unit.Source, got.Source)
		assert.Equal(t, unit.Language, got.Language)
		assert.True(t, got.Enabled)
	})

	t.Run("Lookup Non-Existent", func(t *testing.T) {
		_, err := reg.Lookup(ctx, "contract-missing-unit")
		assert.ErrorIs(t, err, domain.ErrUnitNotFound)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		name := "contract-replace"
		require.NoError(t, reg.Save(ctx, domain.Unit{Name: name, Source: "v1", Enabled: true}))
		require.NoError(t, reg.Save(ctx, domain.Unit{Name: name, Source: "v2", Enabled: false}))

		got, err := reg.Lookup(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Source)
		assert.False(t, got.Enabled)
	})

	t.Run("Delete", func(t *testing.T) {
		name := "contract-delete"
		require.NoError(t, reg.Save(ctx, domain.Unit{Name: name, Source: "x", Enabled: true}))
		require.NoError(t, reg.Delete(ctx, name))

		_, err := reg.Lookup(ctx, name)
		assert.ErrorIs(t, err, domain.ErrUnitNotFound, "Lookup after Delete should return ErrUnitNotFound")

		// Deleting again must stay quiet.
		assert.NoError(t, reg.Delete(ctx, name))
	})

	t.Run("Names", func(t *testing.T) {
		require.NoError(t, reg.Save(ctx, domain.Unit{Name: "contract-names-a", Source: "x", Enabled: true}))
		require.NoError(t, reg.Save(ctx, domain.Unit{Name: "contract-names-b", Source: "x", Enabled: false}))

		names, err := reg.Names(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "contract-names-a")
		assert.Contains(t, names, "contract-names-b", "Names must include disabled units")
	})
}

// RunAliasAdminContract runs a suite of tests to verify that an AliasAdmin
// implementation adheres to the defined interface contract.
func RunAliasAdminContract(t *testing.T, reg AliasAdmin) {
	ctx := context.Background()

	t.Run("Save and Lookup", func(t *testing.T) {
		require.NoError(t, reg.Save(ctx, domain.Alias{Name: "contract-home", Target: "render/index"}))

		target, err := reg.Lookup(ctx, "contract-home")
		require.NoError(t, err)
		assert.Equal(t, "render/index", target)
	})

	t.Run("Lookup Non-Existent", func(t *testing.T) {
		_, err := reg.Lookup(ctx, "contract-missing-alias")
		assert.ErrorIs(t, err, domain.ErrAliasNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, reg.Save(ctx, domain.Alias{Name: "contract-gone", Target: "x"}))
		require.NoError(t, reg.Delete(ctx, "contract-gone"))

		_, err := reg.Lookup(ctx, "contract-gone")
		assert.ErrorIs(t, err, domain.ErrAliasNotFound)
	})

	t.Run("Names", func(t *testing.T) {
		require.NoError(t, reg.Save(ctx, domain.Alias{Name: "contract-names-alias", Target: "x"}))

		names, err := reg.Names(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "contract-names-alias")
	})
}

// RunVariableAdminContract runs a suite of tests to verify that a
// VariableAdmin implementation adheres to the defined interface contract.
func RunVariableAdminContract(t *testing.T, reg VariableAdmin) {
	ctx := context.Background()

	t.Run("Save and Lookup", func(t *testing.T) {
		require.NoError(t, reg.Save(ctx, domain.Variable{Name: "contract-greeting", Value: "hello"}))

		value, err := reg.Lookup(ctx, "contract-greeting")
		require.NoError(t, err)
		assert.Equal(t, "hello", value)
	})

	t.Run("Lookup Non-Existent", func(t *testing.T) {
		_, err := reg.Lookup(ctx, "contract-missing-var")
		assert.ErrorIs(t, err, domain.ErrVariableNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, reg.Save(ctx, domain.Variable{Name: "contract-temp", Value: "x"}))
		require.NoError(t, reg.Delete(ctx, "contract-temp"))

		_, err := reg.Lookup(ctx, "contract-temp")
		assert.ErrorIs(t, err, domain.ErrVariableNotFound)
	})

	t.Run("Names", func(t *testing.T) {
		require.NoError(t, reg.Save(ctx, domain.Variable{Name: "contract-names-var", Value: "x"}))

		names, err := reg.Names(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "contract-names-var")
	})
}
