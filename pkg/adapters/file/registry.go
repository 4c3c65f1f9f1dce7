package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/schema"
)

// debounceInterval coalesces editor save bursts into one reload.
const debounceInterval = 100 * time.Millisecond

// Registry serves unit, alias and variable definitions from a directory:
//
//	<root>/units/<name>.<ext>   unit source; language from the extension
//	<root>/units/<name>.yaml    optional sidecar (schema.UnitMeta)
//	<root>/aliases.yaml         aliases: {name: target}
//	<root>/vars.yaml            variables: {name: value}
//
// Definitions load into an in-memory snapshot at construction and on
// Reload; lookups never touch the disk. The registry is read-only by
// design: operators edit files, and Watch provides hot reload. Mutating
// surfaces should target the memory or redis backends instead.
type Registry struct {
	root string

	mu        sync.RWMutex
	units     map[string]domain.Unit
	aliases   map[string]string
	variables map[string]string
}

var _ ports.Watchable = (*Registry)(nil)

// NewRegistry loads the definition tree rooted at root. A missing units
// directory or missing aliases/vars files are fine; malformed or invalid
// definitions are not.
func NewRegistry(root string) (*Registry, error) {
	if root == "" {
		root = "."
	}
	r := &Registry{root: root}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rescans the directory and swaps the snapshot. On error the
// previous snapshot stays in place, so a bad edit never takes down
// lookups that were working.
func (r *Registry) Reload() error {
	units, aliases, variables, err := r.load()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.units = units
	r.aliases = aliases
	r.variables = variables
	r.mu.Unlock()
	return nil
}

func (r *Registry) load() (map[string]domain.Unit, map[string]string, map[string]string, error) {
	units := make(map[string]domain.Unit)
	sidecars := make(map[string]schema.UnitMeta)
	seen := make(map[string]string)

	unitsDir := filepath.Join(r.root, "units")
	entries, err := os.ReadDir(unitsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, nil, fmt.Errorf("failed to read units directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		base, ext := domain.SplitSuffix(name)
		data, err := os.ReadFile(filepath.Join(unitsDir, name))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("units/%s: %w", name, err)
		}

		// YAML files in units/ are always sidecars, never unit sources.
		if ext == "yaml" || ext == "yml" {
			meta, err := schema.ParseUnitMeta(data)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("units/%s: %w", name, err)
			}
			sidecars[base] = meta
			continue
		}

		lang, err := domain.LanguageForExt(ext)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("units/%s: %w", name, err)
		}
		if prev, ok := seen[base]; ok {
			return nil, nil, nil, fmt.Errorf("collision detected: unit %q is defined in both %q and %q", base, prev, name)
		}
		seen[base] = name

		units[base] = domain.Unit{
			Name:     base,
			Source:   string(data),
			Language: lang,
			Enabled:  true,
		}
	}

	// Overlay sidecars. A sidecar without a source file is ignored, so an
	// operator can stage metadata before the source lands.
	for base, meta := range sidecars {
		u, ok := units[base]
		if !ok {
			continue
		}
		units[base] = meta.Apply(u)
	}

	for base, u := range units {
		if err := schema.ValidateUnit(u); err != nil {
			return nil, nil, nil, fmt.Errorf("units/%s: %w", seen[base], err)
		}
	}

	aliases, err := r.loadStringMap("aliases.yaml", schema.ParseAliasesFile)
	if err != nil {
		return nil, nil, nil, err
	}
	for name, target := range aliases {
		if err := schema.ValidateAlias(domain.Alias{Name: name, Target: target}); err != nil {
			return nil, nil, nil, fmt.Errorf("aliases.yaml: %w", err)
		}
	}

	variables, err := r.loadStringMap("vars.yaml", schema.ParseVariablesFile)
	if err != nil {
		return nil, nil, nil, err
	}
	for name, value := range variables {
		if err := schema.ValidateVariable(domain.Variable{Name: name, Value: value}); err != nil {
			return nil, nil, nil, fmt.Errorf("vars.yaml: %w", err)
		}
	}

	return units, aliases, variables, nil
}

func (r *Registry) loadStringMap(filename string, parse func([]byte) (map[string]string, error)) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(r.root, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	m, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// Units returns the unit registry view.
func (r *Registry) Units() ports.UnitRegistry { return &unitView{r} }

// Aliases returns the alias registry view.
func (r *Registry) Aliases() ports.AliasRegistry { return &aliasView{r} }

// Variables returns the variable registry view.
func (r *Registry) Variables() ports.VariableRegistry { return &variableView{r} }

// Watch reloads on filesystem changes and signals after each successful
// reload. Failed reloads keep the previous snapshot and stay quiet; the
// next change retries. The channel closes when ctx is done.
func (r *Registry) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.root); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.root, err)
	}
	unitsDir := filepath.Join(r.root, "units")
	if _, err := os.Stat(unitsDir); err == nil {
		if err := watcher.Add(unitsDir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", unitsDir, err)
		}
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		defer watcher.Close()

		var debounce *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// The units directory can appear after the watch starts.
				if event.Has(fsnotify.Create) && filepath.Clean(event.Name) == unitsDir {
					_ = watcher.Add(unitsDir)
				}
				if strings.HasPrefix(filepath.Base(event.Name), ".") {
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(debounceInterval)
					fire = debounce.C
				} else {
					if !debounce.Stop() {
						select {
						case <-debounce.C:
						default:
						}
					}
					debounce.Reset(debounceInterval)
				}

			case <-fire:
				debounce, fire = nil, nil
				if err := r.Reload(); err != nil {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

type unitView struct{ r *Registry }

var _ ports.UnitRegistry = (*unitView)(nil)

func (v *unitView) Lookup(ctx context.Context, name string) (domain.Unit, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()

	unit, ok := v.r.units[name]
	if !ok {
		return domain.Unit{}, domain.ErrUnitNotFound
	}
	return unit, nil
}

func (v *unitView) Names(ctx context.Context) ([]string, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	return sortedKeys(v.r.units), nil
}

type aliasView struct{ r *Registry }

var _ ports.AliasRegistry = (*aliasView)(nil)

func (v *aliasView) Lookup(ctx context.Context, name string) (string, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()

	target, ok := v.r.aliases[name]
	if !ok {
		return "", domain.ErrAliasNotFound
	}
	return target, nil
}

func (v *aliasView) Names(ctx context.Context) ([]string, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	return sortedKeys(v.r.aliases), nil
}

type variableView struct{ r *Registry }

var _ ports.VariableRegistry = (*variableView)(nil)

func (v *variableView) Lookup(ctx context.Context, name string) (string, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()

	value, ok := v.r.variables[name]
	if !ok {
		return "", domain.ErrVariableNotFound
	}
	return value, nil
}

func (v *variableView) Names(ctx context.Context) ([]string, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	return sortedKeys(v.r.variables), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}
