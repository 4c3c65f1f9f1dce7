package schema

import (
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
)

var knownLanguages = map[domain.Language]bool{
	domain.LangNone:       true,
	domain.LangPython:     true,
	domain.LangJavaScript: true,
	domain.LangLua:        true,
	domain.LangShell:      true,
}

// nameReason returns why a registry name is invalid, or "" if it is fine.
// Names become path segments, so they must survive path splitting intact.
func nameReason(name string) string {
	switch {
	case name == "":
		return "required"
	case strings.ContainsAny(name, "/"):
		return "must not contain '/' (names are matched against single path segments)"
	case strings.TrimSpace(name) != name:
		return "must not have leading or trailing whitespace"
	default:
		return ""
	}
}

// ValidateUnit checks a unit definition before a registry accepts it.
func ValidateUnit(u domain.Unit) error {
	var errs []error

	if reason := nameReason(u.Name); reason != "" {
		errs = append(errs, &ValidationError{Key: "name", Reason: reason, Value: nonEmpty(u.Name)})
	}
	if u.Source == "" {
		errs = append(errs, &ValidationError{Key: "source", Reason: "required"})
	}
	if !knownLanguages[u.Language] {
		errs = append(errs, &ValidationError{Key: "language", Reason: "unknown language", Value: string(u.Language)})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateAlias checks an alias definition before a registry accepts it.
// Cycles through alias targets are a runtime concern; validation only
// guards the structure.
func ValidateAlias(a domain.Alias) error {
	var errs []error

	if reason := nameReason(a.Name); reason != "" {
		errs = append(errs, &ValidationError{Key: "name", Reason: reason, Value: nonEmpty(a.Name)})
	}
	if a.Target == "" {
		errs = append(errs, &ValidationError{Key: "target", Reason: "required"})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateVariable checks a variable definition before a registry accepts
// it. Empty values are legal; a variable can deliberately resolve to "".
func ValidateVariable(v domain.Variable) error {
	if reason := nameReason(v.Name); reason != "" {
		return &AggregateError{Errors: []error{
			&ValidationError{Key: "name", Reason: reason, Value: nonEmpty(v.Name)},
		}}
	}
	return nil
}

// nonEmpty keeps zero values out of error messages, where they would
// render as a confusing "(got )".
func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
