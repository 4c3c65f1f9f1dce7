package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// Engine is the core path pipeline evaluator. It owns no state of its own:
// every collaborator is injected, and each Evaluate call carries its whole
// request-scoped state in an evaluation value, so one engine instance serves
// concurrent requests.
type Engine struct {
	units      ports.UnitRegistry
	aliases    ports.AliasRegistry
	vars       ports.VariableRegistry
	content    *cas.Store
	dispatcher ports.Dispatcher
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(
	units ports.UnitRegistry,
	aliases ports.AliasRegistry,
	vars ports.VariableRegistry,
	content *cas.Store,
	dispatcher ports.Dispatcher,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		units:      units,
		aliases:    aliases,
		vars:       vars,
		content:    content,
		dispatcher: dispatcher,
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs one path as a right-to-left pipeline.
//
// The rightmost segment starts from req.Input (conventionally empty), and
// each stage's output feeds the stage to its left. A redirect signal from
// any stage ends the evaluation successfully with the remaining stages
// skipped. Any other stage failure aborts evaluation; the returned error is
// a *domain.EvalError naming the failing segment, and in debug mode the
// returned result still carries the trace accumulated so far.
func (e *Engine) Evaluate(ctx context.Context, req domain.EvalRequest) (*domain.PipelineResult, error) {
	segs, err := parsePath(req.Path)
	if err != nil {
		return nil, domain.NewEvalError(-1, "", err)
	}

	ev := &evaluation{
		id:      uuid.NewString(),
		visited: make(map[string]struct{}),
		debug:   req.Debug,
	}
	e.emitEvalStart(ctx, ev, req.Path, len(segs))

	out, err := e.run(ctx, ev, segs, req.Input)
	if err != nil {
		if r, ok := domain.AsRedirect(err); ok {
			e.emitEvalEnd(ctx, ev, req.Path, len(segs), nil, true)
			e.logger.Info("evaluation redirected", "path", req.Path, "location", r.Location)
			return &domain.PipelineResult{Redirect: r, Trace: ev.trace}, nil
		}

		e.emitEvalEnd(ctx, ev, req.Path, len(segs), err, false)

		var se *stageError
		if errors.As(err, &se) {
			e.logger.Warn("evaluation failed",
				"path", req.Path,
				"segment", se.segment,
				"index", se.index,
				"error", se.cause,
			)
			return &domain.PipelineResult{Trace: ev.trace}, domain.NewEvalError(se.index, se.segment, se.cause)
		}
		return &domain.PipelineResult{Trace: ev.trace}, domain.NewEvalError(-1, "", err)
	}

	e.emitEvalEnd(ctx, ev, req.Path, len(segs), nil, false)
	e.logger.Debug("evaluation complete", "path", req.Path, "segments", len(segs), "output_len", len(out))
	return &domain.PipelineResult{Output: out, Trace: ev.trace}, nil
}

// Inspect returns the currently registered units for introspection.
func (e *Engine) Inspect(ctx context.Context) ([]domain.Unit, error) {
	names, err := e.units.Names(ctx)
	if err != nil {
		return nil, err
	}
	units := make([]domain.Unit, 0, len(names))
	for _, name := range names {
		unit, err := e.units.Lookup(ctx, name)
		if err != nil {
			// Deleted between Names and Lookup; skip rather than fail the listing.
			if errors.Is(err, domain.ErrUnitNotFound) {
				continue
			}
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

func (e *Engine) emitEvalStart(ctx context.Context, ev *evaluation, path string, segments int) {
	if e.hooks.OnEvalStart == nil {
		return
	}
	e.hooks.OnEvalStart(ctx, &domain.EvalEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventEvalStart, EvalID: ev.id},
		Path:      path,
		Segments:  segments,
	})
}

func (e *Engine) emitEvalEnd(ctx context.Context, ev *evaluation, path string, segments int, err error, redirect bool) {
	if e.hooks.OnEvalEnd == nil {
		return
	}
	e.hooks.OnEvalEnd(ctx, &domain.EvalEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventEvalEnd, EvalID: ev.id},
		Path:      path,
		Segments:  segments,
		IsError:   err != nil,
		Redirect:  redirect,
	})
}

func (e *Engine) emitStepStart(ctx context.Context, ev *evaluation, seg domain.Segment, cls classification) {
	if e.hooks.OnStepStart == nil {
		return
	}
	e.hooks.OnStepStart(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepStart, EvalID: ev.id},
		Segment:   seg.Text,
		Index:     seg.Index,
		Kind:      cls.kind,
	})
}

func (e *Engine) emitStepEnd(ctx context.Context, ev *evaluation, seg domain.Segment, cls classification, err error) {
	if e.hooks.OnStepEnd == nil {
		return
	}
	event := &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnd, EvalID: ev.id},
		Segment:   seg.Text,
		Index:     seg.Index,
		Kind:      cls.kind,
	}
	if cls.kind == domain.KindUnit {
		event.Language = cls.unit.Runtime()
	}
	if err != nil {
		if _, ok := domain.AsRedirect(err); !ok {
			event.IsError = true
		}
	}
	e.hooks.OnStepEnd(ctx, event)
}
