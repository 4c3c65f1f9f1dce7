package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/domain"
)

func TestParseUnitMeta(t *testing.T) {
	t.Run("FullDocument", func(t *testing.T) {
		meta, err := ParseUnitMeta([]byte("description: Uppercase the input\nenabled: false\nlanguage: lua\n"))
		require.NoError(t, err)

		assert.Equal(t, "Uppercase the input", meta.Description)
		require.NotNil(t, meta.Enabled)
		assert.False(t, *meta.Enabled)
		assert.Equal(t, "lua", meta.Language)
	})

	t.Run("AbsentEnabledStaysNil", func(t *testing.T) {
		meta, err := ParseUnitMeta([]byte("description: just a note\n"))
		require.NoError(t, err)
		assert.Nil(t, meta.Enabled, "absent enabled must be distinguishable from false")
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseUnitMeta([]byte("description: [unclosed"))
		assert.Error(t, err)
	})
}

func TestUnitMetaApply(t *testing.T) {
	base := domain.Unit{
		Name:     "upper",
		Source:   "print(input.upper())",
		Language: domain.LangPython,
		Enabled:  true,
	}

	t.Run("EmptyMetaKeepsDefaults", func(t *testing.T) {
		got := UnitMeta{}.Apply(base)
		assert.Equal(t, base, got)
	})

	t.Run("Overrides", func(t *testing.T) {
		off := false
		meta := UnitMeta{Description: "shouty", Enabled: &off, Language: "lua"}

		got := meta.Apply(base)
		assert.Equal(t, "shouty", got.Description)
		assert.False(t, got.Enabled)
		assert.Equal(t, domain.LangLua, got.Language)
		assert.Equal(t, base.Source, got.Source, "source never comes from metadata")
	})
}

func TestParseUnitFile(t *testing.T) {
	doc := `name: upper
language: python
description: Uppercase the input
source: |
  print(input.upper())
`
	uf, err := ParseUnitFile([]byte(doc))
	require.NoError(t, err)

	unit := uf.Unit()
	assert.Equal(t, "upper", unit.Name)
	assert.Equal(t, "print(input.upper())\n", unit.Source)
	assert.Equal(t, domain.LangPython, unit.Language)
	assert.True(t, unit.Enabled, "enabled defaults to true")
	assert.Equal(t, "Uppercase the input", unit.Description)
}

func TestParseAliasesFile(t *testing.T) {
	t.Run("Map", func(t *testing.T) {
		aliases, err := ParseAliasesFile([]byte("aliases:\n  shout: upper\n  home: render/index\n"))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"shout": "upper", "home": "render/index"}, aliases)
	})

	t.Run("EmptyDocument", func(t *testing.T) {
		aliases, err := ParseAliasesFile([]byte(""))
		require.NoError(t, err)
		assert.Empty(t, aliases)
		assert.NotNil(t, aliases)
	})
}

func TestParseVariablesFile(t *testing.T) {
	vars, err := ParseVariablesFile([]byte("variables:\n  greeting: hello\n  name: world\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello", vars["greeting"])
	assert.Equal(t, "world", vars["name"])
}
