package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/sluice/pkg/domain"
)

// evaluation carries the per-request state threaded through one top-level
// Evaluate call: the shared visited set, the optional trace, and the
// correlation id for lifecycle events. Nested alias resolutions reuse the
// same evaluation, which is what makes indirection chains cycle-safe.
type evaluation struct {
	id      string
	visited map[string]struct{}
	debug   bool
	trace   []domain.StepResult
}

// stageError attributes a failure to the pipeline stage where it surfaced.
// When a nested alias evaluation fails, the outer stage re-attributes the
// cause to itself, so the reported segment is always one the caller actually
// wrote in the request path.
type stageError struct {
	index   int
	segment string
	cause   error
}

func (s *stageError) Error() string {
	return fmt.Sprintf("segment %d (%q): %v", s.index, s.segment, s.cause)
}

func (s *stageError) Unwrap() error { return s.cause }

// run evaluates a segment sequence right to left, feeding each stage's
// output into the next. It returns the final output, or a *stageError for
// the stage that failed or redirected.
func (e *Engine) run(ctx context.Context, ev *evaluation, segs []domain.Segment, input string) (string, error) {
	for i := len(segs) - 1; i >= 0; i-- {
		seg := segs[i]
		out, err := e.evalStage(ctx, ev, seg, input)
		if err != nil {
			var nested *stageError
			if errors.As(err, &nested) {
				err = nested.cause
			}
			return "", &stageError{index: seg.Index, segment: seg.Text, cause: err}
		}
		input = out
	}
	return input, nil
}

// evalStage classifies and resolves a single segment. The error return
// carries failures and early-exit signals alike; callers tell them apart
// with domain.AsRedirect.
func (e *Engine) evalStage(ctx context.Context, ev *evaluation, seg domain.Segment, input string) (string, error) {
	cls, err := e.classify(ctx, seg)
	seg.Kind = cls.kind

	e.emitStepStart(ctx, ev, seg, cls)

	var out string
	if err == nil {
		if identity := cls.identity(seg); identity != "" {
			if _, seen := ev.visited[identity]; seen {
				err = &domain.CycleError{Identity: identity}
			} else {
				ev.visited[identity] = struct{}{}
			}
		}
	}
	if err == nil {
		out, err = e.resolve(ctx, ev, seg, cls, input)
	}

	if ev.debug {
		ev.trace = append(ev.trace, stepRecord(seg, cls, input, out, err))
	}
	e.emitStepEnd(ctx, ev, seg, cls, err)

	if err != nil {
		return "", err
	}
	e.logger.Debug("stage evaluated",
		"segment", seg.Text,
		"kind", string(cls.kind),
		"output_len", len(out),
	)
	return out, nil
}

// identity returns the visited-set key consumed by this stage, or "" for
// stages with nothing to track. Opaque literals and inline payloads have no
// resolved identity and can repeat freely; everything resolved through a
// registry or the content store joins the set.
func (c classification) identity(seg domain.Segment) string {
	switch c.kind {
	case domain.KindUnit:
		return "unit:" + c.unit.Name
	case domain.KindContent:
		if c.inline {
			return ""
		}
		return "cas:" + string(c.contentID)
	case domain.KindAlias:
		return "alias:" + seg.Text
	}
	return ""
}

// resolve produces the stage output for a classified segment.
func (e *Engine) resolve(ctx context.Context, ev *evaluation, seg domain.Segment, cls classification, input string) (string, error) {
	switch cls.kind {
	case domain.KindUnit:
		return e.execute(ctx, cls.unit.Runtime(), cls.unit.Source, input)

	case domain.KindContent:
		return e.resolveContent(ctx, cls, input)

	case domain.KindAlias:
		subSegs, err := parsePath(cls.target)
		if err != nil {
			return "", fmt.Errorf("alias target %q: %w", cls.target, err)
		}
		return e.run(ctx, ev, subSegs, input)

	case domain.KindVariable:
		return cls.value, nil

	default:
		return e.resolveLiteral(ctx, seg, cls, input)
	}
}

// resolveContent fetches or unwraps content and then follows the extension:
// code extensions dispatch the payload as source, everything else passes the
// payload through as data.
func (e *Engine) resolveContent(ctx context.Context, cls classification, input string) (string, error) {
	var payload string
	if cls.inline {
		payload = cls.payload
	} else {
		data, err := e.content.Resolve(ctx, cls.contentID)
		if err != nil {
			return "", err
		}
		payload = string(data)
	}

	switch cls.class {
	case domain.SuffixCode:
		return e.execute(ctx, cls.lang, payload, input)
	case domain.SuffixUnknown:
		// Only reachable for stored refs; inline classification requires a
		// recognized extension.
		return "", &domain.UnrecognizedExtensionError{Ext: cls.ext}
	default:
		return payload, nil
	}
}

// resolveLiteral passes an opaque segment through as raw input. Two guards
// apply: a literal that looks typed but has an unrecognized extension is
// rejected rather than silently passed along, and a literal consuming a
// non-empty upstream value is rejected as ambiguous, since an opaque name in
// a consuming position is almost always a mistyped unit or alias name.
func (e *Engine) resolveLiteral(ctx context.Context, seg domain.Segment, cls classification, input string) (string, error) {
	if cls.class == domain.SuffixUnknown {
		return "", &domain.UnrecognizedExtensionError{Ext: cls.ext}
	}
	if input != "" {
		return "", &domain.AmbiguousSegmentError{
			Segment:     seg.Text,
			Suggestions: e.suggestions(ctx, seg.Text),
		}
	}
	return seg.Text, nil
}

// execute dispatches source to the language runtime and normalizes failures
// into the domain error taxonomy. Redirect signals and missing runtimes pass
// through untouched.
func (e *Engine) execute(ctx context.Context, lang domain.Language, source, input string) (string, error) {
	out, err := e.dispatcher.Exec(ctx, lang, source, input)
	if err == nil {
		return out, nil
	}
	if _, ok := domain.AsRedirect(err); ok {
		return "", err
	}
	if errors.Is(err, domain.ErrRuntimeUnavailable) {
		return "", err
	}
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		return "", err
	}
	return "", &domain.ExecutionError{Language: lang, Err: err}
}

// stepRecord builds the trace entry for one stage.
func stepRecord(seg domain.Segment, cls classification, input, out string, err error) domain.StepResult {
	step := domain.StepResult{
		Segment: seg.Text,
		Index:   seg.Index,
		Kind:    cls.kind,
		Input:   input,
		Output:  out,
	}
	if cls.class == domain.SuffixCode {
		step.Language = cls.lang
	}
	if cls.kind == domain.KindUnit {
		step.Language = cls.unit.Runtime()
	}
	if err != nil {
		if r, ok := domain.AsRedirect(err); ok {
			step.Output = r.Location
		} else {
			step.Err = err.Error()
		}
	}
	return step
}
