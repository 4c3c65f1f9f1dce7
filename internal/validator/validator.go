// Package validator statically checks registered definitions for problems
// that are certain to fail at evaluation time.
package validator

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/schema"
)

// Check inspects every unit, alias and variable and reports the definitions
// certain to fail at runtime: schema violations, alias chains that loop,
// content references absent from the store, and segments whose unrecognized
// type extension the evaluator always rejects.
//
// Position-dependent failures are deliberately out of scope. An opaque name
// is legal at the rightmost stage and an error in a consuming one, so whether
// it fails depends on the path it is embedded in, which a static check cannot
// know.
func Check(ctx context.Context, units ports.UnitRegistry, aliases ports.AliasRegistry, vars ports.VariableRegistry, content *cas.Store) error {
	c := &checker{units: units, aliases: aliases, vars: vars, content: content}

	var problems []string
	problems = append(problems, c.checkUnits(ctx)...)
	problems = append(problems, c.checkVariables(ctx)...)
	problems = append(problems, c.checkAliases(ctx)...)

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

type checker struct {
	units   ports.UnitRegistry
	aliases ports.AliasRegistry
	vars    ports.VariableRegistry
	content *cas.Store
}

func (c *checker) checkUnits(ctx context.Context) []string {
	names, err := c.units.Names(ctx)
	if err != nil {
		return []string{fmt.Sprintf("listing units: %v", err)}
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		u, err := c.units.Lookup(ctx, name)
		if err != nil {
			problems = append(problems, fmt.Sprintf("unit %q: %v", name, err))
			continue
		}
		if err := schema.ValidateUnit(u); err != nil {
			problems = append(problems, fmt.Sprintf("unit %q: %v", name, err))
		}
	}
	return problems
}

func (c *checker) checkVariables(ctx context.Context) []string {
	names, err := c.vars.Names(ctx)
	if err != nil {
		return []string{fmt.Sprintf("listing variables: %v", err)}
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		value, err := c.vars.Lookup(ctx, name)
		if err != nil {
			problems = append(problems, fmt.Sprintf("variable %q: %v", name, err))
			continue
		}
		if err := schema.ValidateVariable(domain.Variable{Name: name, Value: value}); err != nil {
			problems = append(problems, fmt.Sprintf("variable %q: %v", name, err))
		}
	}
	return problems
}

func (c *checker) checkAliases(ctx context.Context) []string {
	names, err := c.aliases.Names(ctx)
	if err != nil {
		return []string{fmt.Sprintf("listing aliases: %v", err)}
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		target, err := c.aliases.Lookup(ctx, name)
		if err != nil {
			problems = append(problems, fmt.Sprintf("alias %q: %v", name, err))
			continue
		}
		if err := schema.ValidateAlias(domain.Alias{Name: name, Target: target}); err != nil {
			problems = append(problems, fmt.Sprintf("alias %q: %v", name, err))
			continue
		}
		problems = append(problems, c.walkTarget(ctx, name, target, []string{name})...)
	}
	return problems
}

// walkTarget follows one alias target the way the evaluator would, chasing
// nested aliases with the chain walked so far.
func (c *checker) walkTarget(ctx context.Context, root, target string, chain []string) []string {
	var problems []string
	for _, part := range strings.Split(target, "/") {
		if part == "" {
			continue
		}
		seg, err := url.PathUnescape(part)
		if err != nil {
			problems = append(problems, fmt.Sprintf("alias %q: target %q does not parse: %v", root, target, err))
			continue
		}
		problems = append(problems, c.checkSegment(ctx, root, seg, chain)...)
	}
	return problems
}

// checkSegment classifies one target segment with the evaluator's precedence
// and reports what is certain to fail.
func (c *checker) checkSegment(ctx context.Context, root, seg string, chain []string) []string {
	if u, err := c.units.Lookup(ctx, seg); err == nil && u.Enabled {
		return nil
	}

	if id, err := cas.Normalize(seg); err == nil {
		ok, err := c.content.Has(ctx, id)
		if err != nil {
			return []string{fmt.Sprintf("alias %q: checking content %s: %v", root, id, err)}
		}
		if !ok {
			return []string{fmt.Sprintf("alias %q: content %s is not stored", root, id)}
		}
		return nil
	}

	_, ext := domain.SplitSuffix(seg)
	class, _ := domain.ClassifySuffix(ext)
	if class == domain.SuffixCode || class == domain.SuffixData {
		return nil // inline payload
	}

	if next, err := c.aliases.Lookup(ctx, seg); err == nil {
		for _, seen := range chain {
			if seen == seg {
				return []string{fmt.Sprintf("alias cycle: %s", strings.Join(append(chain, seg), " -> "))}
			}
		}
		return c.walkTarget(ctx, root, next, append(chain, seg))
	}

	if _, err := c.vars.Lookup(ctx, seg); err == nil {
		return nil
	}

	if class == domain.SuffixUnknown {
		return []string{fmt.Sprintf("alias %q: segment %q has an unrecognized extension and matches nothing", root, seg)}
	}

	// An opaque literal. Legal at the rightmost stage, so not a certainty.
	return nil
}
