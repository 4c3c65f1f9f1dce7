package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
)

// UnitRegistry implements ports.UnitAdmin using an in-memory map.
// Safe for concurrent use.
type UnitRegistry struct {
	mu    sync.RWMutex
	units map[string]domain.Unit
}

// NewUnitRegistry creates a new registry pre-populated with the given units.
// This handles setup in one call, improving DX for tests.
func NewUnitRegistry(units ...domain.Unit) *UnitRegistry {
	r := &UnitRegistry{units: make(map[string]domain.Unit)}
	for _, u := range units {
		r.units[u.Name] = u
	}
	return r
}

// Lookup retrieves a unit by exact name.
func (r *UnitRegistry) Lookup(ctx context.Context, name string) (domain.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unit, ok := r.units[name]
	if !ok {
		return domain.Unit{}, domain.ErrUnitNotFound
	}
	return unit, nil
}

// Names returns all registered unit names, including disabled ones.
func (r *UnitRegistry) Names(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.units), nil
}

// Save creates or replaces a unit definition.
func (r *UnitRegistry) Save(ctx context.Context, unit domain.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[unit.Name] = unit
	return nil
}

// Delete removes a unit.
func (r *UnitRegistry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.units, name)
	return nil
}

// AliasRegistry implements ports.AliasAdmin using an in-memory map.
// Safe for concurrent use.
type AliasRegistry struct {
	mu      sync.RWMutex
	targets map[string]string
}

// NewAliasRegistry creates a new registry pre-populated with the given aliases.
func NewAliasRegistry(aliases ...domain.Alias) *AliasRegistry {
	r := &AliasRegistry{targets: make(map[string]string)}
	for _, a := range aliases {
		r.targets[a.Name] = a.Target
	}
	return r
}

// Lookup returns the target for an alias name.
func (r *AliasRegistry) Lookup(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target, ok := r.targets[name]
	if !ok {
		return "", domain.ErrAliasNotFound
	}
	return target, nil
}

// Names returns all registered alias names.
func (r *AliasRegistry) Names(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.targets), nil
}

// Save creates or replaces an alias.
func (r *AliasRegistry) Save(ctx context.Context, alias domain.Alias) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[alias.Name] = alias.Target
	return nil
}

// Delete removes an alias.
func (r *AliasRegistry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.targets, name)
	return nil
}

// VariableRegistry implements ports.VariableAdmin using an in-memory map.
// Safe for concurrent use.
type VariableRegistry struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewVariableRegistry creates a new registry pre-populated with the given variables.
func NewVariableRegistry(vars ...domain.Variable) *VariableRegistry {
	r := &VariableRegistry{values: make(map[string]string)}
	for _, v := range vars {
		r.values[v.Name] = v.Value
	}
	return r
}

// Lookup returns the value for a variable name.
func (r *VariableRegistry) Lookup(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[name]
	if !ok {
		return "", domain.ErrVariableNotFound
	}
	return value, nil
}

// Names returns all registered variable names.
func (r *VariableRegistry) Names(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.values), nil
}

// Save creates or replaces a variable.
func (r *VariableRegistry) Save(ctx context.Context, v domain.Variable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[v.Name] = v.Value
	return nil
}

// Delete removes a variable.
func (r *VariableRegistry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, name)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}
