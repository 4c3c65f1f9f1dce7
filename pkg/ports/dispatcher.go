package ports

import (
	"context"

	"github.com/aretw0/sluice/pkg/domain"
)

// Executor defines how source code in a single language is executed.
// Implementations own the runtime binding: an embedded interpreter, a child
// process, or anything else that can turn (source, input) into output.
type Executor interface {
	// Execute runs source against a single input value and returns its
	// output. A *domain.Redirect returned as the error is not a failure but
	// an early-exit signal the engine converts into a terminal result.
	Execute(ctx context.Context, source, input string) (string, error)
}

// Dispatcher routes (language, source) pairs to an installed Executor.
// The engine emits execution requests, and the host decides which runtimes
// exist by populating the dispatch table.
type Dispatcher interface {
	// Exec executes source under the runtime registered for lang.
	// Returns domain.ErrRuntimeUnavailable (wrapped) when no executor is
	// installed for lang.
	Exec(ctx context.Context, lang domain.Language, source, input string) (string, error)

	// Languages returns the language tags with an installed executor.
	Languages() []domain.Language
}
