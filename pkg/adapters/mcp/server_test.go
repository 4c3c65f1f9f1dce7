package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/internal/runtime"
	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
)

type opExecutor struct{}

func (opExecutor) Execute(ctx context.Context, source, input string) (string, error) {
	switch source {
	case "upper":
		return strings.ToUpper(input), nil
	case "redirect":
		return "", &domain.Redirect{Location: "/landing"}
	default:
		return "", errors.New("unknown test op: " + source)
	}
}

func newTestServer(t *testing.T) (*Server, *memory.UnitRegistry) {
	t.Helper()

	units := memory.NewUnitRegistry(
		domain.Unit{Name: "upper", Source: "upper", Language: domain.LangPython, Enabled: true, Description: "Uppercases its input."},
		domain.Unit{Name: "bounce", Source: "redirect", Language: domain.LangPython, Enabled: true},
		domain.Unit{Name: "off", Source: "upper", Language: domain.LangPython, Enabled: false},
	)
	dispatch := registry.NewRegistry()
	dispatch.Install(domain.LangPython, opExecutor{})

	engine := runtime.NewEngine(
		units,
		memory.NewAliasRegistry(),
		memory.NewVariableRegistry(),
		cas.NewStore(memory.NewStore()),
		dispatch,
	)

	s, err := NewServer(context.Background(), engine, units)
	require.NoError(t, err)
	return s, units
}

func TestHandleEvalPath(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	t.Run("Evaluates", func(t *testing.T) {
		res, err := s.handleEvalPath(ctx, mcp.CallToolRequest{}, map[string]interface{}{
			"path": "/upper/hello",
		})
		require.NoError(t, err)
		assert.Equal(t, "HELLO", res.Output)
		assert.Nil(t, res.Trace)
	})

	t.Run("Input Argument", func(t *testing.T) {
		res, err := s.handleEvalPath(ctx, mcp.CallToolRequest{}, map[string]interface{}{
			"path":  "/upper",
			"input": "hi",
		})
		require.NoError(t, err)
		assert.Equal(t, "HI", res.Output)
	})

	t.Run("Debug Includes Trace", func(t *testing.T) {
		res, err := s.handleEvalPath(ctx, mcp.CallToolRequest{}, map[string]interface{}{
			"path":  "/upper/hello",
			"debug": true,
		})
		require.NoError(t, err)
		assert.Equal(t, "HELLO", res.Output)
		assert.Len(t, res.Trace, 2)
	})

	t.Run("Redirect Is Structured", func(t *testing.T) {
		res, err := s.handleEvalPath(ctx, mcp.CallToolRequest{}, map[string]interface{}{
			"path": "/bounce",
		})
		require.NoError(t, err)
		require.NotNil(t, res.Redirect)
		assert.Equal(t, "/landing", res.Redirect.Location)
	})

	t.Run("Missing Path", func(t *testing.T) {
		_, err := s.handleEvalPath(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
		assert.Error(t, err)
	})

	t.Run("Evaluation Failure", func(t *testing.T) {
		_, err := s.handleEvalPath(ctx, mcp.CallToolRequest{}, map[string]interface{}{
			"path": "/missing/hello",
		})
		assert.Error(t, err)
	})
}

func TestEvalUnit(t *testing.T) {
	s, units := newTestServer(t)
	ctx := context.Background()

	t.Run("Runs Unit", func(t *testing.T) {
		out, err := s.evalUnit(ctx, "upper", "abc")
		require.NoError(t, err)
		assert.Equal(t, "ABC", out)
	})

	t.Run("Redirect Reported As Text", func(t *testing.T) {
		out, err := s.evalUnit(ctx, "bounce", "")
		require.NoError(t, err)
		assert.Equal(t, "redirect to /landing", out)
	})

	t.Run("Disabled Unit Rejected", func(t *testing.T) {
		_, err := s.evalUnit(ctx, "off", "abc")
		assert.ErrorIs(t, err, domain.ErrUnitDisabled)
	})

	t.Run("Unknown Unit Rejected", func(t *testing.T) {
		_, err := s.evalUnit(ctx, "ghost", "abc")
		assert.ErrorIs(t, err, domain.ErrUnitNotFound)
	})

	t.Run("Disabled After Registration", func(t *testing.T) {
		u, err := units.Lookup(ctx, "upper")
		require.NoError(t, err)
		u.Enabled = false
		require.NoError(t, units.Save(ctx, u))
		t.Cleanup(func() {
			u.Enabled = true
			_ = units.Save(ctx, u)
		})

		_, err = s.evalUnit(ctx, "upper", "abc")
		assert.ErrorIs(t, err, domain.ErrUnitDisabled)
	})
}

func TestUnitCatalog(t *testing.T) {
	s, _ := newTestServer(t)

	catalog, err := s.unitCatalog(context.Background())
	require.NoError(t, err)

	assert.Contains(t, catalog, `"upper"`)
	assert.Contains(t, catalog, `"enabled":false`)
	assert.Contains(t, catalog, "Uppercases its input.")
	// Program text never leaves the registry through the catalog.
	assert.NotContains(t, catalog, `"source":"upper"`)
}

func TestToolName(t *testing.T) {
	tests := []struct {
		unit string
		want string
	}{
		{"upper", "run_upper"},
		{"to-html", "run_to-html"},
		{"weird.name", "run_weird_name"},
		{"émoji", "run__moji"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toolName(tt.unit), tt.unit)
	}
}
