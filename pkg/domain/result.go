package domain

import (
	"errors"
	"strings"
)

// StepResult records one stage of a pipeline evaluation. Steps are appended
// in evaluation order, which runs right to left over the original path, so
// the first entry is the rightmost segment.
type StepResult struct {
	// Segment is the decoded text of the segment this step evaluated.
	Segment string `json:"segment"`
	// Index is the segment's left-to-right position in the original path.
	Index int `json:"index"`
	// Kind is the classification the step resolved to.
	Kind Kind `json:"kind"`
	// Language is set when the step dispatched source to a runtime.
	Language Language `json:"language,omitempty"`
	// Input is the value the stage consumed. Empty for the rightmost stage.
	Input string `json:"input"`
	// Output is the value the stage produced. For a redirecting stage it
	// holds the redirect location.
	Output string `json:"output"`
	// Err holds the stage's error message when the stage failed.
	Err string `json:"error,omitempty"`
}

// PipelineResult is the outcome of evaluating one path.
type PipelineResult struct {
	// Output is the final stage's output. Meaningless when Redirect is set.
	Output string `json:"output"`
	// Redirect is non-nil when a stage short-circuited evaluation with an
	// early-exit signal. Remaining stages were skipped, not failed.
	Redirect *Redirect `json:"redirect,omitempty"`
	// Trace holds per-stage records when the evaluation ran in debug mode,
	// and is nil otherwise. On failure it carries the steps completed before
	// the failing one, plus the failing step itself.
	Trace []StepResult `json:"trace,omitempty"`
}

// Redirect is an early-exit signal: a stage produced a terminal response
// rather than a value for the next stage. It travels the error return of
// executors and resolvers, but it is an outcome, not a failure; the
// evaluator converts it into PipelineResult.Redirect and stops cleanly.
type Redirect struct {
	// Location is the target the caller should follow.
	Location string `json:"location"`
	// Status is the suggested HTTP status code. Zero means 302.
	Status int `json:"status,omitempty"`
}

// Error implements the error interface so a Redirect can surface through
// executor and resolver signatures without a second return value.
func (r *Redirect) Error() string {
	return "redirect to " + r.Location
}

// StatusCode returns the redirect status, defaulting to 302 Found.
func (r *Redirect) StatusCode() int {
	if r.Status == 0 {
		return 302
	}
	return r.Status
}

// AsRedirect unwraps an error chain looking for an early-exit signal.
func AsRedirect(err error) (*Redirect, bool) {
	var r *Redirect
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// RedirectMarker is the output convention for runtimes that can only talk
// through stdout: when a program's entire (trimmed) output is the marker
// followed by a location, executors convert it into a Redirect signal.
// Embedded runtimes are free to signal redirects natively instead.
const RedirectMarker = "::redirect "

// ParseRedirectOutput checks program output for the redirect convention.
func ParseRedirectOutput(out string) (*Redirect, bool) {
	trimmed := strings.TrimSpace(out)
	if !strings.HasPrefix(trimmed, RedirectMarker) {
		return nil, false
	}
	location := strings.TrimSpace(strings.TrimPrefix(trimmed, RedirectMarker))
	if location == "" {
		return nil, false
	}
	return &Redirect{Location: location}, true
}
