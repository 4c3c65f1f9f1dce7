package sluice_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/registry"
)

func testEngine(opts ...sluice.Option) *sluice.Engine {
	units := memory.NewUnitRegistry(domain.Unit{
		Name:     "shout",
		Source:   "print(input.upper())",
		Language: domain.LangPython,
		Enabled:  true,
	})
	dispatch := registry.NewRegistry()
	dispatch.Install(domain.LangPython, registry.Placeholder{Output: "SHOUTED"})

	all := append([]sluice.Option{
		sluice.WithUnits(units),
		sluice.WithDispatcher(dispatch),
	}, opts...)
	return sluice.New(all...)
}

func TestNewDefaults(t *testing.T) {
	eng := sluice.New()

	// A lone literal needs no registries and no interpreters.
	res, err := eng.Evaluate(context.Background(), domain.EvalRequest{Path: "/hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Output)

	assert.NotNil(t, eng.Units())
	assert.NotNil(t, eng.Aliases())
	assert.NotNil(t, eng.Variables())
	assert.NotNil(t, eng.Content())
	assert.NotNil(t, eng.Dispatcher())
}

func TestEvaluateWithInjectedCollaborators(t *testing.T) {
	eng := testEngine(
		sluice.WithVariables(memory.NewVariableRegistry(
			domain.Variable{Name: "greeting", Value: "hey there"},
		)),
	)

	res, err := eng.Evaluate(context.Background(), domain.EvalRequest{Path: "/shout/greeting"})
	require.NoError(t, err)
	assert.Equal(t, "SHOUTED", res.Output)
	assert.Nil(t, res.Trace)
}

func TestContentRoundTripThroughFacade(t *testing.T) {
	eng := sluice.New()
	ctx := context.Background()

	id, err := eng.Content().Put(ctx, []byte("stored payload"))
	require.NoError(t, err)

	res, err := eng.Evaluate(ctx, domain.EvalRequest{Path: "/" + string(id)})
	require.NoError(t, err)
	assert.Equal(t, "stored payload", res.Output)
}

func TestLifecycleHooks(t *testing.T) {
	var evalStarts, evalEnds, stepStarts, stepEnds int
	eng := testEngine(sluice.WithLifecycleHooks(domain.LifecycleHooks{
		OnEvalStart: func(context.Context, *domain.EvalEvent) { evalStarts++ },
		OnEvalEnd:   func(context.Context, *domain.EvalEvent) { evalEnds++ },
		OnStepStart: func(context.Context, *domain.StepEvent) { stepStarts++ },
		OnStepEnd:   func(context.Context, *domain.StepEvent) { stepEnds++ },
	}))

	_, err := eng.Evaluate(context.Background(), domain.EvalRequest{Path: "/shout/hi"})
	require.NoError(t, err)

	assert.Equal(t, 1, evalStarts)
	assert.Equal(t, 1, evalEnds)
	assert.Equal(t, 2, stepStarts)
	assert.Equal(t, 2, stepEnds)
}

func TestWatchUnsupported(t *testing.T) {
	eng := sluice.New()

	_, err := eng.Watch(context.Background())
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(sluice.Version))
}

func TestRunner(t *testing.T) {
	t.Run("Evaluates Lines", func(t *testing.T) {
		var out bytes.Buffer
		r := sluice.NewRunner()
		r.Input = strings.NewReader("/shout/hi\nexit\n")
		r.Output = &out

		require.NoError(t, r.Run(context.Background(), testEngine()))
		assert.Contains(t, out.String(), "SHOUTED")
		assert.Contains(t, out.String(), "Bye!")
	})

	t.Run("Headless Omits Chrome", func(t *testing.T) {
		var out bytes.Buffer
		r := sluice.NewRunner()
		r.Input = strings.NewReader("/shout/hi\n")
		r.Output = &out
		r.Headless = true

		require.NoError(t, r.Run(context.Background(), testEngine()))
		assert.Equal(t, "SHOUTED\n", out.String())
	})

	t.Run("Evaluation Error Keeps Looping", func(t *testing.T) {
		var out bytes.Buffer
		r := sluice.NewRunner()
		r.Input = strings.NewReader("/nope.zzz\n/shout/hi\n")
		r.Output = &out
		r.Headless = true

		require.NoError(t, r.Run(context.Background(), testEngine()))
		assert.Contains(t, out.String(), "error:")
		assert.Contains(t, out.String(), "SHOUTED")
	})

	t.Run("Unset IO Rejected", func(t *testing.T) {
		r := sluice.NewRunner()
		assert.Error(t, r.Run(context.Background(), testEngine()))
	})
}
