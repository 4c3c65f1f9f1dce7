package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/domain"
)

func TestEvaluateCycles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.aliases.Save(ctx, domain.Alias{Name: "selfie", Target: "selfie"}))
	require.NoError(t, f.aliases.Save(ctx, domain.Alias{Name: "ping", Target: "pong"}))
	require.NoError(t, f.aliases.Save(ctx, domain.Alias{Name: "pong", Target: "ping"}))
	require.NoError(t, f.aliases.Save(ctx, domain.Alias{Name: "sneaky", Target: "upper/sneaky"}))

	cases := []struct {
		name string
		path string
	}{
		{"SelfReferencingAlias", "selfie"},
		{"MutualAliases", "ping"},
		{"AliasReenteredThroughTarget", "sneaky"},
		{"RepeatedUnit", "upper/upper/hello"},
		{"RepeatedAlias", "shout/shout/hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Termination is the point: these must fail fast, not hang.
			_, err := f.engine.Evaluate(ctx, domain.EvalRequest{Path: tc.path})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrCycleDetected), "got %v", err)

			var evalError *domain.EvalError
			require.ErrorAs(t, err, &evalError)
			assert.Equal(t, domain.KindCycle, evalError.Kind)
		})
	}

	t.Run("RepeatedContent", func(t *testing.T) {
		id, err := f.content.Put(ctx, []byte("payload"))
		require.NoError(t, err)

		_, evalErr := f.engine.Evaluate(ctx, domain.EvalRequest{Path: string(id) + "/" + string(id)})
		require.Error(t, evalErr)
		assert.True(t, errors.Is(evalErr, domain.ErrCycleDetected))
	})

	t.Run("VisitedSetIsPerEvaluation", func(t *testing.T) {
		// The same identity may appear in back-to-back evaluations; only
		// repetition within one evaluation is a cycle.
		assert.Equal(t, "HI", f.eval(t, "upper/hi").Output)
		assert.Equal(t, "HI", f.eval(t, "upper/hi").Output)
	})

	t.Run("DistinctIdentitiesDoNotCollide", func(t *testing.T) {
		// Two different units plus an alias to a third path: no repeats.
		assert.Equal(t, "OLLEH", f.eval(t, "reverse/shout/hello").Output)
	})

	t.Run("RepeatedVariableIsFine", func(t *testing.T) {
		// Variables are terminal leaves with no resolved identity to track,
		// so repeating one is harmless.
		assert.Equal(t, "WORLD", f.eval(t, "upper/name/name").Output)
	})
}
