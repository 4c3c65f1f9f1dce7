package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

func TestUnitRegistry_Contract(t *testing.T) {
	ports.RunUnitAdminContract(t, memory.NewUnitRegistry())
}

func TestAliasRegistry_Contract(t *testing.T) {
	ports.RunAliasAdminContract(t, memory.NewAliasRegistry())
}

func TestVariableRegistry_Contract(t *testing.T) {
	ports.RunVariableAdminContract(t, memory.NewVariableRegistry())
}

func TestRegistryConstructors(t *testing.T) {
	ctx := context.Background()

	t.Run("UnitsPrePopulated", func(t *testing.T) {
		reg := memory.NewUnitRegistry(
			domain.Unit{Name: "upper", Source: "print(input.upper())", Enabled: true},
			domain.Unit{Name: "off", Source: "x", Enabled: false},
		)

		unit, err := reg.Lookup(ctx, "upper")
		require.NoError(t, err)
		assert.True(t, unit.Enabled)

		names, err := reg.Names(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"off", "upper"}, names)
	})

	t.Run("AliasesPrePopulated", func(t *testing.T) {
		reg := memory.NewAliasRegistry(domain.Alias{Name: "home", Target: "render/index"})

		target, err := reg.Lookup(ctx, "home")
		require.NoError(t, err)
		assert.Equal(t, "render/index", target)
	})

	t.Run("VariablesPrePopulated", func(t *testing.T) {
		reg := memory.NewVariableRegistry(domain.Variable{Name: "name", Value: "world"})

		value, err := reg.Lookup(ctx, "name")
		require.NoError(t, err)
		assert.Equal(t, "world", value)
	})
}
