package dsl

import (
	"fmt"
	"sort"

	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/schema"
)

// Builder collects definitions fluently and compiles them into seeded
// in-memory registries.
type Builder struct {
	units     map[string]*UnitBuilder
	aliases   map[string]string
	variables map[string]string
}

// New creates an empty definitions builder.
func New() *Builder {
	return &Builder{
		units:     make(map[string]*UnitBuilder),
		aliases:   make(map[string]string),
		variables: make(map[string]string),
	}
}

// Unit adds a unit and returns its builder for fluent configuration.
// If the unit was already added, the existing builder is returned.
func (b *Builder) Unit(name string) *UnitBuilder {
	if ub, ok := b.units[name]; ok {
		return ub
	}
	ub := &UnitBuilder{
		unit: domain.Unit{
			Name:    name,
			Enabled: true,
		},
	}
	b.units[name] = ub
	return ub
}

// Alias maps a name onto a path fragment. Redefining a name replaces the
// earlier target.
func (b *Builder) Alias(name, target string) *Builder {
	b.aliases[name] = target
	return b
}

// Var defines a variable. Redefining a name replaces the earlier value.
func (b *Builder) Var(name, value string) *Builder {
	b.variables[name] = value
	return b
}

// Build validates every definition and compiles the set into registries
// ready to hand to the engine. Problems are reported against the name
// that caused them, in sorted order, first one wins.
func (b *Builder) Build() (*Definitions, error) {
	units := make([]domain.Unit, 0, len(b.units))
	for _, name := range sortedKeys(b.units) {
		u := b.units[name].unit
		if err := schema.ValidateUnit(u); err != nil {
			return nil, fmt.Errorf("unit %q: %w", name, err)
		}
		units = append(units, u)
	}

	aliases := make([]domain.Alias, 0, len(b.aliases))
	for _, name := range sortedKeys(b.aliases) {
		a := domain.Alias{Name: name, Target: b.aliases[name]}
		if err := schema.ValidateAlias(a); err != nil {
			return nil, fmt.Errorf("alias %q: %w", name, err)
		}
		aliases = append(aliases, a)
	}

	variables := make([]domain.Variable, 0, len(b.variables))
	for _, name := range sortedKeys(b.variables) {
		v := domain.Variable{Name: name, Value: b.variables[name]}
		if err := schema.ValidateVariable(v); err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		variables = append(variables, v)
	}

	return &Definitions{
		Units:     memory.NewUnitRegistry(units...),
		Aliases:   memory.NewAliasRegistry(aliases...),
		Variables: memory.NewVariableRegistry(variables...),
	}, nil
}

// Definitions is the compiled output: seeded registries that plug into
// an engine through its options.
type Definitions struct {
	Units     *memory.UnitRegistry
	Aliases   *memory.AliasRegistry
	Variables *memory.VariableRegistry
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
