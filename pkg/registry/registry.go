// Package registry implements the language dispatch table: a concurrency-safe
// mapping from language tags to installed executors.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// Registry manages the available language runtimes. It implements
// ports.Dispatcher: the engine asks it to execute (language, source) pairs
// and never learns how a runtime is bound.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.Language]ports.Executor
}

// NewRegistry creates a new empty registry. A fresh registry dispatches
// nothing; every language must be installed explicitly.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[domain.Language]ports.Executor),
	}
}

// Install binds an executor to a language tag.
// If the language already has an executor, it is overwritten.
func (r *Registry) Install(lang domain.Language, exec ports.Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[lang] = exec
}

// Exec looks up the executor for a language and runs source against input.
// Returns domain.ErrRuntimeUnavailable (wrapped with the language tag) when
// no executor is installed.
func (r *Registry) Exec(ctx context.Context, lang domain.Language, source, input string) (string, error) {
	r.mu.RLock()
	exec, ok := r.executors[lang]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%s: %w", lang, domain.ErrRuntimeUnavailable)
	}

	return exec.Execute(ctx, source, input)
}

// Languages returns the installed language tags, sorted for stable output.
func (r *Registry) Languages() []domain.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]domain.Language, 0, len(r.executors))
	for lang := range r.executors {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

var _ ports.Dispatcher = (*Registry)(nil)
