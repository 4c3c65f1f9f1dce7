package sluice

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/sluice/internal/runtime"
	"github.com/aretw0/sluice/pkg/adapters/lua"
	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/adapters/process"
	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/registry"
)

// Engine is the high-level entry point for the Sluice library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime    *runtime.Engine
	units      ports.UnitRegistry
	aliases    ports.AliasRegistry
	vars       ports.VariableRegistry
	blobs      ports.BlobStore
	content    *cas.Store
	dispatcher ports.Dispatcher
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithUnits injects a custom unit registry, bypassing the default
// in-memory one.
func WithUnits(units ports.UnitRegistry) Option {
	return func(e *Engine) {
		e.units = units
	}
}

// WithAliases injects a custom alias registry.
func WithAliases(aliases ports.AliasRegistry) Option {
	return func(e *Engine) {
		e.aliases = aliases
	}
}

// WithVariables injects a custom variable registry.
func WithVariables(vars ports.VariableRegistry) Option {
	return func(e *Engine) {
		e.vars = vars
	}
}

// WithBlobStore injects the backing store for content-addressed payloads.
// The engine always wraps it in a verifying content store, so reads check
// the payload hash against the id they were fetched by.
func WithBlobStore(blobs ports.BlobStore) Option {
	return func(e *Engine) {
		e.blobs = blobs
	}
}

// WithDispatcher sets a custom executor dispatch table, replacing the
// stock interpreter set.
func WithDispatcher(d ports.Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Sluice Engine.
// By default it evaluates against empty in-memory registries, an in-memory
// content store, and the stock interpreter set (python3, node, the platform
// shell as subprocesses, Lua in-process). Every collaborator can be swapped
// through options.
func New(opts ...Option) *Engine {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.units == nil {
		eng.units = memory.NewUnitRegistry()
	}
	if eng.aliases == nil {
		eng.aliases = memory.NewAliasRegistry()
	}
	if eng.vars == nil {
		eng.vars = memory.NewVariableRegistry()
	}
	if eng.blobs == nil {
		eng.blobs = memory.NewStore()
	}
	eng.content = cas.NewStore(eng.blobs)
	if eng.dispatcher == nil {
		eng.dispatcher = defaultDispatcher()
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which
	// would overwrite its default).
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(
		eng.units,
		eng.aliases,
		eng.vars,
		eng.content,
		eng.dispatcher,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)

	return eng
}

// defaultDispatcher wires the interpreters most hosts have on PATH, plus
// the embedded Lua runtime.
func defaultDispatcher() ports.Dispatcher {
	reg := registry.NewRegistry()
	for _, exec := range process.DefaultExecutors() {
		reg.Install(exec.Language(), exec)
	}
	reg.Install(domain.LangLua, lua.New())
	return reg
}

// Evaluate runs one path as a right-to-left pipeline. See
// domain.EvalRequest for the knobs and domain.PipelineResult for what
// comes back; with Debug set the result carries a per-stage trace even
// when evaluation fails.
func (e *Engine) Evaluate(ctx context.Context, req domain.EvalRequest) (*domain.PipelineResult, error) {
	return e.runtime.Evaluate(ctx, req)
}

// Units returns the unit registry the engine evaluates against.
func (e *Engine) Units() ports.UnitRegistry {
	return e.units
}

// Aliases returns the alias registry the engine evaluates against.
func (e *Engine) Aliases() ports.AliasRegistry {
	return e.aliases
}

// Variables returns the variable registry the engine evaluates against.
func (e *Engine) Variables() ports.VariableRegistry {
	return e.vars
}

// Content returns the verifying content store over the configured blobs.
func (e *Engine) Content() *cas.Store {
	return e.content
}

// Dispatcher returns the executor dispatch table.
func (e *Engine) Dispatcher() ports.Dispatcher {
	return e.dispatcher
}

// Watch returns a channel that signals when the underlying unit registry
// changes. Returns error if the registry does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.units.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current unit registry does not support watching")
}
