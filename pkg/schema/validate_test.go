package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/domain"
)

func TestValidateUnit(t *testing.T) {
	valid := domain.Unit{Name: "upper", Source: "print(input.upper())", Language: domain.LangPython, Enabled: true}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateUnit(valid))
	})

	t.Run("DefaultLanguageIsValid", func(t *testing.T) {
		u := valid
		u.Language = domain.LangNone
		assert.NoError(t, ValidateUnit(u))
	})

	t.Run("CollectsEveryFailure", func(t *testing.T) {
		err := ValidateUnit(domain.Unit{Name: "", Source: "", Language: "ruby"})
		require.Error(t, err)

		errs := ValidationErrors(err)
		assert.Len(t, errs, 3)
	})

	t.Run("SlashInName", func(t *testing.T) {
		u := valid
		u.Name = "some/unit"
		err := ValidateUnit(u)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single path segments")
	})

	t.Run("SurroundingWhitespace", func(t *testing.T) {
		u := valid
		u.Name = " upper"
		assert.Error(t, ValidateUnit(u))
	})

	t.Run("UnknownLanguage", func(t *testing.T) {
		u := valid
		u.Language = "cobol"
		err := ValidateUnit(u)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown language")
	})
}

func TestValidateAlias(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateAlias(domain.Alias{Name: "shout", Target: "upper"}))
	})

	t.Run("SubPathTargetIsValid", func(t *testing.T) {
		assert.NoError(t, ValidateAlias(domain.Alias{Name: "both", Target: "reverse/upper"}))
	})

	t.Run("MissingTarget", func(t *testing.T) {
		err := ValidateAlias(domain.Alias{Name: "shout"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"target"`)
	})
}

func TestValidateVariable(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateVariable(domain.Variable{Name: "greeting", Value: "hello"}))
	})

	t.Run("EmptyValueIsLegal", func(t *testing.T) {
		assert.NoError(t, ValidateVariable(domain.Variable{Name: "empty"}))
	})

	t.Run("MissingName", func(t *testing.T) {
		assert.Error(t, ValidateVariable(domain.Variable{Value: "x"}))
	})
}
