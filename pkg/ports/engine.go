package ports

import (
	"context"

	"github.com/aretw0/sluice/pkg/domain"
)

// Evaluator defines the interface for path evaluation cores.
// This is the primary interface used by adapters (e.g., HTTP, MCP, CLI) that
// translate their own request surface into an EvalRequest.
type Evaluator interface {
	// Evaluate runs one path as a right-to-left pipeline. On failure the
	// returned error is a *domain.EvalError naming the failing segment; the
	// result, when non-nil, still carries the trace accumulated so far in
	// debug mode.
	Evaluate(ctx context.Context, req domain.EvalRequest) (*domain.PipelineResult, error)

	// Inspect returns the currently registered units for introspection.
	Inspect(ctx context.Context) ([]domain.Unit, error)
}
