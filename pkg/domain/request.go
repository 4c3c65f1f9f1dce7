package domain

// EvalRequest describes one path evaluation. Transports build it from their
// own surface (URL, CLI flags, tool call arguments) and hand it to an
// evaluator.
type EvalRequest struct {
	// Path is the raw slash-delimited path, percent-encoded or not.
	Path string `json:"path"`
	// Input seeds the rightmost stage. Empty means the conventional
	// "no input" start.
	Input string `json:"input,omitempty"`
	// Debug turns on step tracing for this evaluation only. When false the
	// evaluator must not pay any tracing cost.
	Debug bool `json:"debug,omitempty"`
}
