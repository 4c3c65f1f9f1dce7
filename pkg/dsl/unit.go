package dsl

import "github.com/aretw0/sluice/pkg/domain"

// UnitBuilder provides a fluent API for configuring one unit.
type UnitBuilder struct {
	unit domain.Unit
}

// Python sets the source and targets the Python interpreter.
func (u *UnitBuilder) Python(source string) *UnitBuilder {
	u.unit.Source = source
	u.unit.Language = domain.LangPython
	return u
}

// JavaScript sets the source and targets the Node.js interpreter.
func (u *UnitBuilder) JavaScript(source string) *UnitBuilder {
	u.unit.Source = source
	u.unit.Language = domain.LangJavaScript
	return u
}

// Lua sets the source and targets the embedded Lua interpreter.
func (u *UnitBuilder) Lua(source string) *UnitBuilder {
	u.unit.Source = source
	u.unit.Language = domain.LangLua
	return u
}

// Shell sets the source and targets the POSIX shell.
func (u *UnitBuilder) Shell(source string) *UnitBuilder {
	u.unit.Source = source
	u.unit.Language = domain.LangShell
	return u
}

// Describe attaches a human-readable description.
func (u *UnitBuilder) Describe(text string) *UnitBuilder {
	u.unit.Description = text
	return u
}

// Disabled registers the unit switched off: its name stops matching
// during classification until something re-enables it.
func (u *UnitBuilder) Disabled() *UnitBuilder {
	u.unit.Enabled = false
	return u
}

// Build returns the underlying domain.Unit.
// This is primarily used by the Builder, but exposed for advanced usage.
func (u *UnitBuilder) Build() domain.Unit {
	return u.unit
}
