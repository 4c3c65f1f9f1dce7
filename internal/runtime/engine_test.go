package runtime

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/registry"
)

// opExecutor interprets a unit's source as an operation name, which keeps
// test fixtures readable without a real interpreter. It counts invocations
// so tests can assert that skipped stages never ran.
type opExecutor struct {
	calls atomic.Int64
}

func (x *opExecutor) Execute(ctx context.Context, source, input string) (string, error) {
	x.calls.Add(1)
	switch source {
	case "upper":
		return strings.ToUpper(input), nil
	case "reverse":
		runes := []rune(input)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	case "echo":
		return input, nil
	case "redirect":
		return "", &domain.Redirect{Location: "/landing"}
	case "fail":
		return "", errors.New("interpreter exploded")
	default:
		return "", errors.New("unknown test op: " + source)
	}
}

// fixture bundles an engine with the backends the tests poke at directly.
type fixture struct {
	engine  *Engine
	exec    *opExecutor
	units   *memory.UnitRegistry
	aliases *memory.AliasRegistry
	vars    *memory.VariableRegistry
	blobs   *memory.Store
	content *cas.Store
}

func newFixture(t *testing.T, opts ...EngineOption) *fixture {
	t.Helper()

	f := &fixture{
		exec: &opExecutor{},
		units: memory.NewUnitRegistry(
			domain.Unit{Name: "upper", Source: "upper", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "reverse", Source: "reverse", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "echo", Source: "echo", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "bounce", Source: "redirect", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "broken", Source: "fail", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "off", Source: "upper", Language: domain.LangPython, Enabled: false},
			domain.Unit{Name: "shelly", Source: "echo hi", Language: domain.LangShell, Enabled: true},
		),
		aliases: memory.NewAliasRegistry(
			domain.Alias{Name: "shout", Target: "upper"},
			domain.Alias{Name: "both", Target: "reverse/upper"},
		),
		vars: memory.NewVariableRegistry(
			domain.Variable{Name: "name", Value: "world"},
		),
		blobs: memory.NewStore(),
	}
	f.content = cas.NewStore(f.blobs)

	dispatch := registry.NewRegistry()
	dispatch.Install(domain.LangPython, f.exec)

	f.engine = NewEngine(f.units, f.aliases, f.vars, f.content, dispatch, opts...)
	return f
}

func (f *fixture) eval(t *testing.T, path string) *domain.PipelineResult {
	t.Helper()
	res, err := f.engine.Evaluate(context.Background(), domain.EvalRequest{Path: path})
	require.NoError(t, err, "path %s", path)
	return res
}

func TestEvaluatePipelines(t *testing.T) {
	f := newFixture(t)

	t.Run("SingleLiteral", func(t *testing.T) {
		assert.Equal(t, "hello", f.eval(t, "hello").Output)
	})

	t.Run("UnitOverLiteral", func(t *testing.T) {
		assert.Equal(t, "HELLO", f.eval(t, "upper/hello").Output)
	})

	t.Run("RightToLeftOrder", func(t *testing.T) {
		// reverse(upper(hello)), never upper(reverse(hello))
		assert.Equal(t, "OLLEH", f.eval(t, "reverse/upper/hello").Output)
	})

	t.Run("PercentDecodedLiteral", func(t *testing.T) {
		assert.Equal(t, "HELLO WORLD", f.eval(t, "upper/hello%20world").Output)
	})

	t.Run("VariableAsSource", func(t *testing.T) {
		assert.Equal(t, "world", f.eval(t, "name").Output)
		assert.Equal(t, "WORLD", f.eval(t, "upper/name").Output)
	})

	t.Run("AliasToUnit", func(t *testing.T) {
		assert.Equal(t, "HELLO", f.eval(t, "shout/hello").Output)
	})

	t.Run("AliasToSubPath", func(t *testing.T) {
		assert.Equal(t, "OLLEH", f.eval(t, "both/hello").Output)
	})

	t.Run("InlineCode", func(t *testing.T) {
		// "upper.py" is not a registered name; the extension makes it
		// inline source for the python runtime.
		assert.Equal(t, "HELLO", f.eval(t, "upper.py/hello").Output)
	})

	t.Run("InlineData", func(t *testing.T) {
		assert.Equal(t, "README", f.eval(t, "README.md").Output)
	})

	t.Run("Determinism", func(t *testing.T) {
		first := f.eval(t, "reverse/upper/hello").Output
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, f.eval(t, "reverse/upper/hello").Output)
		}
	})
}

func TestEvaluateStoredContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sourceID, err := f.content.Put(ctx, []byte("upper"))
	require.NoError(t, err)
	dataID, err := f.content.Put(ctx, []byte("stored payload"))
	require.NoError(t, err)

	t.Run("DataPassesThrough", func(t *testing.T) {
		assert.Equal(t, "stored payload", f.eval(t, string(dataID)).Output)
	})

	t.Run("DataSuffixPassesThrough", func(t *testing.T) {
		assert.Equal(t, "stored payload", f.eval(t, string(dataID)+".txt").Output)
	})

	t.Run("CodeSuffixExecutes", func(t *testing.T) {
		assert.Equal(t, "HI", f.eval(t, string(sourceID)+".py/hi").Output)
	})

	t.Run("MarkerPrefixAccepted", func(t *testing.T) {
		assert.Equal(t, "stored payload", f.eval(t, cas.Marker+string(dataID)).Output)
	})

	t.Run("FeedsDownstreamStages", func(t *testing.T) {
		assert.Equal(t, "STORED PAYLOAD", f.eval(t, "upper/"+string(dataID)).Output)
	})
}

func TestEvaluateRedirect(t *testing.T) {
	f := newFixture(t)

	t.Run("ShortCircuits", func(t *testing.T) {
		before := f.exec.calls.Load()
		res := f.eval(t, "upper/bounce/hello")

		require.NotNil(t, res.Redirect)
		assert.Equal(t, "/landing", res.Redirect.Location)
		assert.Equal(t, 302, res.Redirect.StatusCode())
		assert.Empty(t, res.Output)

		// Only bounce ran; upper was skipped, not failed.
		assert.Equal(t, int64(1), f.exec.calls.Load()-before)
	})
}

func TestEvaluateClassificationPrecedence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("UnitShadowsAliasAndVariable", func(t *testing.T) {
		require.NoError(t, f.aliases.Save(ctx, domain.Alias{Name: "upper", Target: "reverse"}))
		require.NoError(t, f.vars.Save(ctx, domain.Variable{Name: "upper", Value: "nope"}))

		assert.Equal(t, "HI", f.eval(t, "upper/hi").Output)
	})

	t.Run("AliasShadowsVariable", func(t *testing.T) {
		require.NoError(t, f.aliases.Save(ctx, domain.Alias{Name: "dual", Target: "upper"}))
		require.NoError(t, f.vars.Save(ctx, domain.Variable{Name: "dual", Value: "nope"}))

		assert.Equal(t, "HI", f.eval(t, "dual/hi").Output)
	})

	t.Run("DisabledUnitFallsThrough", func(t *testing.T) {
		// "off" is a disabled unit, so the bare segment is an opaque literal.
		assert.Equal(t, "off", f.eval(t, "off").Output)
		assert.Equal(t, "OFF", f.eval(t, "upper/off").Output)
	})
}
