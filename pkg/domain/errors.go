package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnitNotFound is returned when a unit name cannot be found in the registry.
var ErrUnitNotFound = errors.New("unit not found")

// ErrUnitDisabled is returned when a unit is invoked directly while disabled.
// During path classification a disabled unit simply never matches; this error
// only surfaces on direct-invocation surfaces such as tool calls.
var ErrUnitDisabled = errors.New("unit disabled")

// ErrAliasNotFound is returned when an alias name cannot be found.
var ErrAliasNotFound = errors.New("alias not found")

// ErrVariableNotFound is returned when a variable name cannot be found.
var ErrVariableNotFound = errors.New("variable not found")

// ErrContentNotFound is returned when a content identifier is well-formed but
// no stored payload exists for it.
var ErrContentNotFound = errors.New("content not found")

// ErrCycleDetected is returned when an identity repeats within a single
// evaluation, which would otherwise recurse forever through indirections.
var ErrCycleDetected = errors.New("cycle detected")

// ErrRuntimeUnavailable is returned when source is dispatched for a language
// that has no executor installed.
var ErrRuntimeUnavailable = errors.New("runtime unavailable")

// ParseError reports a request path that could not be decoded into segments.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Path, e.Reason)
}

// AmbiguousSegmentError reports a segment that matched no registered name in
// a position where falling back to an opaque literal would silently discard
// a computed value. Suggestions carries near-miss names when any were close.
type AmbiguousSegmentError struct {
	Segment     string
	Suggestions []string
}

func (e *AmbiguousSegmentError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("segment %q matches nothing and cannot take input as a literal", e.Segment)
	}
	return fmt.Sprintf("segment %q matches nothing and cannot take input as a literal (did you mean %s?)",
		e.Segment, strings.Join(e.Suggestions, ", "))
}

// UnrecognizedExtensionError reports an extension that is neither a known
// language nor a known data format. It is never silently ignored: a segment
// that looks typed must resolve to something the engine understands.
type UnrecognizedExtensionError struct {
	Ext string
}

func (e *UnrecognizedExtensionError) Error() string {
	return fmt.Sprintf("unrecognized extension %q", e.Ext)
}

// DataExtensionError reports a data-format extension used where executable
// source was required.
type DataExtensionError struct {
	Ext string
}

func (e *DataExtensionError) Error() string {
	return fmt.Sprintf("extension %q is a data format, not executable source", e.Ext)
}

// CycleError reports which identity closed the loop. It unwraps to
// ErrCycleDetected so callers can test with errors.Is.
type CycleError struct {
	Identity string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected at %q", e.Identity)
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// IntegrityError reports stored content whose bytes no longer hash to the
// identifier they were stored under.
type IntegrityError struct {
	ID       string
	Computed string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("content %s failed integrity check (stored bytes hash to %s)", e.ID, e.Computed)
}

// ExecutionError reports a runtime failure while executing dispatched source.
type ExecutionError struct {
	Language Language
	Detail   string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s execution failed: %s", e.Language, e.Detail)
	}
	return fmt.Sprintf("%s execution failed: %v", e.Language, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ErrorKind buckets evaluation failures for transports that need a coarse
// category, such as an HTTP status mapping or a trace row.
type ErrorKind string

const (
	KindParseError       ErrorKind = "parse"
	KindAmbiguous        ErrorKind = "ambiguous"
	KindNotFound         ErrorKind = "not_found"
	KindBadExtension     ErrorKind = "unrecognized_extension"
	KindDataExtension    ErrorKind = "data_extension"
	KindRuntimeMissing   ErrorKind = "runtime_unavailable"
	KindExecutionFailure ErrorKind = "execution"
	KindCycle            ErrorKind = "cycle"
	KindIntegrity        ErrorKind = "integrity"
	KindInternal         ErrorKind = "internal"
)

// KindOf derives the ErrorKind for an error chain.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnitNotFound),
		errors.Is(err, ErrAliasNotFound),
		errors.Is(err, ErrVariableNotFound),
		errors.Is(err, ErrContentNotFound),
		errors.Is(err, ErrUnitDisabled):
		return KindNotFound
	case errors.Is(err, ErrCycleDetected):
		return KindCycle
	case errors.Is(err, ErrRuntimeUnavailable):
		return KindRuntimeMissing
	}
	var (
		parseErr     *ParseError
		ambiguousErr *AmbiguousSegmentError
		extErr       *UnrecognizedExtensionError
		dataErr      *DataExtensionError
		integrityErr *IntegrityError
		execErr      *ExecutionError
	)
	switch {
	case errors.As(err, &parseErr):
		return KindParseError
	case errors.As(err, &ambiguousErr):
		return KindAmbiguous
	case errors.As(err, &extErr):
		return KindBadExtension
	case errors.As(err, &dataErr):
		return KindDataExtension
	case errors.As(err, &integrityErr):
		return KindIntegrity
	case errors.As(err, &execErr):
		return KindExecutionFailure
	}
	return KindInternal
}

// EvalError wraps a stage failure with its position in the evaluated path.
// Index is the failing segment's left-to-right position; Segment its decoded
// text. The underlying cause is preserved for errors.Is and errors.As.
type EvalError struct {
	Kind    ErrorKind
	Index   int
	Segment string
	Err     error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("segment %d (%q): %v", e.Index, e.Segment, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// NewEvalError wraps err with segment position info, deriving the kind from
// the error chain.
func NewEvalError(index int, segment string, err error) *EvalError {
	return &EvalError{Kind: KindOf(err), Index: index, Segment: segment, Err: err}
}
