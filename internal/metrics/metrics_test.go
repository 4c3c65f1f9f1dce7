package metrics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/domain"
)

func TestHooksCountOutcomes(t *testing.T) {
	m := New()
	hooks := m.Hooks()
	ctx := context.Background()

	start := time.Now()
	hooks.OnEvalStart(ctx, &domain.EvalEvent{
		EventBase: domain.EventBase{EvalID: "e1", Timestamp: start},
	})
	hooks.OnEvalEnd(ctx, &domain.EvalEvent{
		EventBase: domain.EventBase{EvalID: "e1", Timestamp: start.Add(5 * time.Millisecond)},
	})

	hooks.OnEvalStart(ctx, &domain.EvalEvent{
		EventBase: domain.EventBase{EvalID: "e2", Timestamp: start},
	})
	hooks.OnEvalEnd(ctx, &domain.EvalEvent{
		EventBase: domain.EventBase{EvalID: "e2", Timestamp: start.Add(time.Millisecond)},
		IsError:   true,
	})

	hooks.OnEvalEnd(ctx, &domain.EvalEvent{
		EventBase: domain.EventBase{EvalID: "e3", Timestamp: start},
		Redirect:  true,
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.evals.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evals.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evals.WithLabelValues("redirect")))
}

func TestHooksCountSteps(t *testing.T) {
	m := New()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepEnd(ctx, &domain.StepEvent{Kind: domain.KindUnit})
	hooks.OnStepEnd(ctx, &domain.StepEvent{Kind: domain.KindUnit, IsError: true})
	hooks.OnStepEnd(ctx, &domain.StepEvent{Kind: domain.KindLiteral})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.steps.WithLabelValues("unit", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.steps.WithLabelValues("unit", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.steps.WithLabelValues("literal", "success")))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.Hooks().OnStepEnd(context.Background(), &domain.StepEvent{Kind: domain.KindUnit})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "sluice_steps_total")
}
