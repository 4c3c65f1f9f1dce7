package domain

// Unit is a named piece of executable source registered with the engine.
// Units are owned and mutated by a registry outside the evaluator; the
// evaluator only reads them. A path segment that exactly matches the name of
// an enabled unit executes that unit's source against the segment's input.
type Unit struct {
	// Name is the unique registry key. Matching against path segments is
	// exact and case-sensitive.
	Name string `json:"name" yaml:"name"`
	// Source is the program text handed to the language runtime.
	Source string `json:"source" yaml:"source"`
	// Language selects the runtime. Empty means DefaultLanguage.
	Language Language `json:"language,omitempty" yaml:"language,omitempty"`
	// Enabled gates classification: a disabled unit never matches a segment,
	// so the segment falls through to the remaining classification steps.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Description is surfaced by introspection transports (CLI listings,
	// tool catalogs). It plays no role in evaluation.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Runtime returns the effective language tag, applying DefaultLanguage when
// the unit was registered without one.
func (u Unit) Runtime() Language {
	if u.Language == LangNone {
		return DefaultLanguage
	}
	return u.Language
}

// Alias is a named indirection. Its target may be a content identifier, a
// unit name, or a whole sub-path; resolution re-enters segment evaluation on
// the target, sharing the caller's visited set so indirection chains cannot
// loop.
type Alias struct {
	Name   string `json:"name" yaml:"name"`
	Target string `json:"target" yaml:"target"`
}

// Variable is a named leaf value. A segment matching a variable name yields
// the value directly, with no further resolution or execution.
type Variable struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}
