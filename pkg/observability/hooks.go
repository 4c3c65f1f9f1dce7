/*
Package observability combines lifecycle hook consumers.

The engine accepts exactly one LifecycleHooks value. When several consumers
need the event stream (metrics plus debug logging, say), MergeHooks fans each
callback out to all of them, in registration order.
*/
package observability

import (
	"context"

	"github.com/aretw0/sluice/pkg/domain"
)

// MergeHooks combines hook sets into one. Nil callbacks are skipped, so
// members only pay for the stages they subscribe to.
func MergeHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvalStart: func(ctx context.Context, e *domain.EvalEvent) {
			for _, h := range hooks {
				if h.OnEvalStart != nil {
					h.OnEvalStart(ctx, e)
				}
			}
		},
		OnEvalEnd: func(ctx context.Context, e *domain.EvalEvent) {
			for _, h := range hooks {
				if h.OnEvalEnd != nil {
					h.OnEvalEnd(ctx, e)
				}
			}
		},
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStepStart != nil {
					h.OnStepStart(ctx, e)
				}
			}
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStepEnd != nil {
					h.OnStepEnd(ctx, e)
				}
			}
		},
	}
}
