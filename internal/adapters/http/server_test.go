package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/internal/metrics"
	"github.com/aretw0/sluice/internal/runtime"
	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/registry"
)

// opExecutor interprets unit source as an operation name, so transport tests
// need no real interpreter.
type opExecutor struct{}

func (opExecutor) Execute(ctx context.Context, source, input string) (string, error) {
	switch source {
	case "upper":
		return strings.ToUpper(input), nil
	case "echo":
		return input, nil
	case "redirect":
		return "", &domain.Redirect{Location: "/landing", Status: 301}
	case "fail":
		return "", errors.New("interpreter exploded")
	default:
		return "", errors.New("unknown test op: " + source)
	}
}

// backends bundles the stores behind a test server, for tests that poke at
// them directly.
type backends struct {
	units   *memory.UnitRegistry
	aliases *memory.AliasRegistry
	vars    *memory.VariableRegistry
	content *cas.Store
}

func newTestServer(t *testing.T, extra ...Option) (http.Handler, *backends) {
	t.Helper()

	b := &backends{
		units: memory.NewUnitRegistry(
			domain.Unit{Name: "upper", Source: "upper", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "echo", Source: "echo", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "bounce", Source: "redirect", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "broken", Source: "fail", Language: domain.LangPython, Enabled: true},
			domain.Unit{Name: "shelly", Source: "echo hi", Language: domain.LangShell, Enabled: true},
		),
		aliases: memory.NewAliasRegistry(
			domain.Alias{Name: "shout", Target: "upper"},
			domain.Alias{Name: "loop", Target: "loop"},
		),
		vars: memory.NewVariableRegistry(
			domain.Variable{Name: "name", Value: "world"},
		),
	}
	b.content = cas.NewStore(memory.NewStore())

	dispatch := registry.NewRegistry()
	dispatch.Install(domain.LangPython, opExecutor{})

	engine := runtime.NewEngine(b.units, b.aliases, b.vars, b.content, dispatch)

	opts := append([]Option{
		WithLogger(logging.NewNop()),
		WithContent(b.content),
		WithUnits(b.units),
		WithAliases(b.aliases),
		WithVariables(b.vars),
	}, extra...)
	return NewHandler(engine, opts...), b
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestEval(t *testing.T) {
	handler, _ := newTestServer(t)

	t.Run("Pipeline Evaluates Right To Left", func(t *testing.T) {
		w := get(t, handler, "/upper/hello")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "HELLO", w.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("Input Query Seeds Rightmost Stage", func(t *testing.T) {
		w := get(t, handler, "/upper?input=hi")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HI", w.Body.String())
	})

	t.Run("Alias Resolves", func(t *testing.T) {
		w := get(t, handler, "/shout/hey")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HEY", w.Body.String())
	})

	t.Run("Variable Resolves", func(t *testing.T) {
		w := get(t, handler, "/upper/name")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "WORLD", w.Body.String())
	})

	t.Run("Data Extension Sets Content Type", func(t *testing.T) {
		w := get(t, handler, "/doc.json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "doc", w.Body.String())
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("Redirect Signal Becomes HTTP Redirect", func(t *testing.T) {
		w := get(t, handler, "/bounce")
		require.Equal(t, 301, w.Code)
		assert.Equal(t, "/landing", w.Header().Get("Location"))
	})

	t.Run("Redirect Skips Remaining Stages", func(t *testing.T) {
		w := get(t, handler, "/broken/bounce")
		require.Equal(t, 301, w.Code)
	})
}

func TestEvalErrors(t *testing.T) {
	handler, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"Empty Path", "/", http.StatusBadRequest},
		{"Ambiguous Literal", "/missing/hello", http.StatusBadRequest},
		{"Unknown Extension", "/file.xyz", http.StatusBadRequest},
		{"Unstored Content", "/" + strings.Repeat("ab", 32), http.StatusNotFound},
		{"Runtime Unavailable", "/shelly", http.StatusNotImplemented},
		{"Execution Failure", "/broken", http.StatusInternalServerError},
		{"Cycle", "/loop", http.StatusLoopDetected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, handler, tt.target)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestEvalDebug(t *testing.T) {
	handler, _ := newTestServer(t)

	type envelope struct {
		Output string              `json:"output"`
		Trace  []domain.StepResult `json:"trace"`
		Error  *struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	decode := func(t *testing.T, w *httptest.ResponseRecorder) envelope {
		t.Helper()
		var out envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
		return out
	}

	t.Run("Query Parameter", func(t *testing.T) {
		w := get(t, handler, "/upper/hello?debug=true")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		body := decode(t, w)
		assert.Equal(t, "HELLO", body.Output)
		require.Len(t, body.Trace, 2)
		assert.Equal(t, "hello", body.Trace[0].Segment)
		assert.Equal(t, "upper", body.Trace[1].Segment)
	})

	t.Run("Trailing Marker", func(t *testing.T) {
		w := get(t, handler, "/upper/hello.debug")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HELLO", decode(t, w).Output)
	})

	t.Run("Failure Keeps Status And Trace", func(t *testing.T) {
		w := get(t, handler, "/broken?debug=1")
		require.Equal(t, http.StatusInternalServerError, w.Code)

		body := decode(t, w)
		require.NotNil(t, body.Error)
		assert.Equal(t, "execution", body.Error.Kind)
		require.Len(t, body.Trace, 1)
		assert.Contains(t, body.Trace[0].Err, "interpreter exploded")
	})

	t.Run("Text Format From Extension", func(t *testing.T) {
		w := get(t, handler, "/report.txt?debug=true")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "result: report")
	})

	t.Run("Off By Default", func(t *testing.T) {
		w := get(t, handler, "/upper/hello")
		assert.Equal(t, "HELLO", w.Body.String())
	})
}

func TestGetHealth(t *testing.T) {
	handler, _ := newTestServer(t)

	w := get(t, handler, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	handler, _ := newTestServer(t, WithMetricsHandler(m.Handler()))

	w := get(t, handler, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

type stubWatcher struct {
	ch chan struct{}
}

func (s *stubWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	return s.ch, nil
}

func TestSubscribeEvents(t *testing.T) {
	watcher := &stubWatcher{ch: make(chan struct{}, 1)}
	watcher.ch <- struct{}{}
	close(watcher.ch)

	handler, _ := newTestServer(t, WithWatcher(watcher))

	w := get(t, handler, "/events")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "data: reload")
}

func TestCORSPreflight(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/upper/hello", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
