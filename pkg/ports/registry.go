package ports

import (
	"context"

	"github.com/aretw0/sluice/pkg/domain"
)

// UnitRegistry defines how the engine looks up executable unit definitions.
// This allows the storage layer (FS, Redis, Memory) to be decoupled.
type UnitRegistry interface {
	// Lookup retrieves a unit by exact name.
	// Returns domain.ErrUnitNotFound if no unit is registered under it.
	Lookup(ctx context.Context, name string) (domain.Unit, error)

	// Names returns all registered unit names, including disabled ones.
	// This is used for introspection surfaces and near-miss suggestions.
	Names(ctx context.Context) ([]string, error)
}

// UnitAdmin extends UnitRegistry with mutation, for management surfaces
// (CLI, HTTP admin). The evaluator itself only ever needs UnitRegistry.
type UnitAdmin interface {
	UnitRegistry

	// Save creates or replaces a unit definition.
	Save(ctx context.Context, unit domain.Unit) error

	// Delete removes a unit. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error
}

// AliasRegistry defines how the engine resolves indirection names to their
// targets. A target may be a content identifier, a unit name, or a sub-path.
type AliasRegistry interface {
	// Lookup returns the target for an alias name.
	// Returns domain.ErrAliasNotFound if no alias is registered under it.
	Lookup(ctx context.Context, name string) (string, error)

	// Names returns all registered alias names.
	Names(ctx context.Context) ([]string, error)
}

// AliasAdmin extends AliasRegistry with mutation.
type AliasAdmin interface {
	AliasRegistry

	Save(ctx context.Context, alias domain.Alias) error
	Delete(ctx context.Context, name string) error
}

// VariableRegistry defines how the engine resolves variable names to their
// leaf values.
type VariableRegistry interface {
	// Lookup returns the value for a variable name.
	// Returns domain.ErrVariableNotFound if no variable is registered under it.
	Lookup(ctx context.Context, name string) (string, error)

	// Names returns all registered variable names.
	Names(ctx context.Context) ([]string, error)
}

// VariableAdmin extends VariableRegistry with mutation.
type VariableAdmin interface {
	VariableRegistry

	Save(ctx context.Context, v domain.Variable) error
	Delete(ctx context.Context, name string) error
}

// Watchable defines an interface for registries that can notify about backend
// changes. This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying backend
	// changes. It abstracts away the specific event details, signaling only
	// that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
