// Package metrics exposes Prometheus instrumentation for the engine.
//
// The engine itself stays metrics-free; this package bridges its lifecycle
// hooks into counters and histograms, so instrumentation is opt-in and lives
// entirely at the composition root.
package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/sluice/pkg/domain"
)

// Outcome labels for evaluations and steps.
const (
	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeRedirect = "redirect"
)

// Metrics holds the engine's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	evals        *prometheus.CounterVec
	evalDuration *prometheus.HistogramVec
	steps        *prometheus.CounterVec

	starts sync.Map // eval id -> time.Time
}

// New creates and registers all engine collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sluice_evaluations_total",
			Help: "Path evaluations by outcome.",
		}, []string{"outcome"}),
		evalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sluice_evaluation_duration_seconds",
			Help:    "Wall-clock duration of path evaluations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sluice_steps_total",
			Help: "Pipeline stages by segment kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	m.registry.MustRegister(
		m.evals,
		m.evalDuration,
		m.steps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors. Combine with other
// hooks at the composition root if more than one consumer needs the stream.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvalStart: func(ctx context.Context, e *domain.EvalEvent) {
			m.starts.Store(e.EvalID, e.Timestamp)
		},
		OnEvalEnd: func(ctx context.Context, e *domain.EvalEvent) {
			outcome := outcomeSuccess
			switch {
			case e.IsError:
				outcome = outcomeError
			case e.Redirect:
				outcome = outcomeRedirect
			}
			m.evals.WithLabelValues(outcome).Inc()

			if v, ok := m.starts.LoadAndDelete(e.EvalID); ok {
				m.evalDuration.WithLabelValues(outcome).Observe(e.Timestamp.Sub(v.(time.Time)).Seconds())
			}
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			outcome := outcomeSuccess
			if e.IsError {
				outcome = outcomeError
			}
			kind := string(e.Kind)
			if kind == "" {
				kind = "unknown"
			}
			m.steps.WithLabelValues(kind, outcome).Inc()
		},
	}
}
