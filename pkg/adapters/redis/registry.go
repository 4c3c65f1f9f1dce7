package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// UnitRegistry implements ports.UnitAdmin on Redis. Units serialize as
// JSON under <prefix>unit:<name>.
type UnitRegistry struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.UnitAdmin = (*UnitRegistry)(nil)

// NewUnitRegistry creates a unit registry from an existing client.
func NewUnitRegistry(client *backend.Client, opts ...Option) *UnitRegistry {
	s := newSettings(opts)
	return &UnitRegistry{client: client, prefix: s.prefix, ttl: s.ttl}
}

func (r *UnitRegistry) key(name string) string { return r.prefix + "unit:" + name }
func (r *UnitRegistry) indexKey() string       { return r.prefix + "unit:index" }

// Lookup retrieves a unit by exact name.
func (r *UnitRegistry) Lookup(ctx context.Context, name string) (domain.Unit, error) {
	val, err := r.client.Get(ctx, r.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Unit{}, domain.ErrUnitNotFound
		}
		return domain.Unit{}, fmt.Errorf("failed to get unit from redis: %w", err)
	}

	var unit domain.Unit
	if err := json.Unmarshal([]byte(val), &unit); err != nil {
		return domain.Unit{}, fmt.Errorf("failed to unmarshal unit %s: %w", name, err)
	}
	return unit, nil
}

// Names returns all registered unit names, including disabled ones.
func (r *UnitRegistry) Names(ctx context.Context) ([]string, error) {
	names, err := listIndex(ctx, r.client, r.indexKey())
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return names, nil
}

// Save creates or replaces a unit definition.
func (r *UnitRegistry) Save(ctx context.Context, unit domain.Unit) error {
	data, err := json.Marshal(unit)
	if err != nil {
		return fmt.Errorf("failed to marshal unit: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(unit.Name), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score(r.ttl), Member: unit.Name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save unit to redis: %w", err)
	}
	return nil
}

// Delete removes a unit. Deleting an unknown name is not an error.
func (r *UnitRegistry) Delete(ctx context.Context, name string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(name))
	pipe.ZRem(ctx, r.indexKey(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// AliasRegistry implements ports.AliasAdmin on Redis. Targets are plain
// string values under <prefix>alias:<name>.
type AliasRegistry struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.AliasAdmin = (*AliasRegistry)(nil)

// NewAliasRegistry creates an alias registry from an existing client.
func NewAliasRegistry(client *backend.Client, opts ...Option) *AliasRegistry {
	s := newSettings(opts)
	return &AliasRegistry{client: client, prefix: s.prefix, ttl: s.ttl}
}

func (r *AliasRegistry) key(name string) string { return r.prefix + "alias:" + name }
func (r *AliasRegistry) indexKey() string       { return r.prefix + "alias:index" }

// Lookup returns the target for an alias name.
func (r *AliasRegistry) Lookup(ctx context.Context, name string) (string, error) {
	target, err := r.client.Get(ctx, r.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return "", domain.ErrAliasNotFound
		}
		return "", fmt.Errorf("failed to get alias from redis: %w", err)
	}
	return target, nil
}

// Names returns all registered alias names.
func (r *AliasRegistry) Names(ctx context.Context) ([]string, error) {
	names, err := listIndex(ctx, r.client, r.indexKey())
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	return names, nil
}

// Save creates or replaces an alias.
func (r *AliasRegistry) Save(ctx context.Context, alias domain.Alias) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(alias.Name), alias.Target, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score(r.ttl), Member: alias.Name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save alias to redis: %w", err)
	}
	return nil
}

// Delete removes an alias. Deleting an unknown name is not an error.
func (r *AliasRegistry) Delete(ctx context.Context, name string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(name))
	pipe.ZRem(ctx, r.indexKey(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// VariableRegistry implements ports.VariableAdmin on Redis. Values are
// plain strings under <prefix>var:<name>.
type VariableRegistry struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.VariableAdmin = (*VariableRegistry)(nil)

// NewVariableRegistry creates a variable registry from an existing client.
func NewVariableRegistry(client *backend.Client, opts ...Option) *VariableRegistry {
	s := newSettings(opts)
	return &VariableRegistry{client: client, prefix: s.prefix, ttl: s.ttl}
}

func (r *VariableRegistry) key(name string) string { return r.prefix + "var:" + name }
func (r *VariableRegistry) indexKey() string       { return r.prefix + "var:index" }

// Lookup returns the value for a variable name.
func (r *VariableRegistry) Lookup(ctx context.Context, name string) (string, error) {
	value, err := r.client.Get(ctx, r.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return "", domain.ErrVariableNotFound
		}
		return "", fmt.Errorf("failed to get variable from redis: %w", err)
	}
	return value, nil
}

// Names returns all registered variable names.
func (r *VariableRegistry) Names(ctx context.Context) ([]string, error) {
	names, err := listIndex(ctx, r.client, r.indexKey())
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	return names, nil
}

// Save creates or replaces a variable.
func (r *VariableRegistry) Save(ctx context.Context, v domain.Variable) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(v.Name), v.Value, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score(r.ttl), Member: v.Name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save variable to redis: %w", err)
	}
	return nil
}

// Delete removes a variable. Deleting an unknown name is not an error.
func (r *VariableRegistry) Delete(ctx context.Context, name string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(name))
	pipe.ZRem(ctx, r.indexKey(), name)

	_, err := pipe.Exec(ctx)
	return err
}
