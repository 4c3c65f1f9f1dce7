package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
)

// classification is the outcome of classifying one segment. Exactly one of
// the payload fields is meaningful, selected by kind.
type classification struct {
	kind domain.Kind

	// kind == KindUnit
	unit domain.Unit

	// kind == KindContent, stored form
	contentID cas.ContentID
	// kind == KindContent, inline form
	inline  bool
	payload string

	// extension semantics, shared by content and literal kinds
	ext   string
	class domain.SuffixClass
	lang  domain.Language

	// kind == KindAlias
	target string

	// kind == KindVariable
	value string
}

// classify decides what a segment is. The precedence is fixed and total:
//
//  1. exact match against an enabled unit name
//  2. a content identifier: a stored hash reference, or an inline payload
//     with a recognized type extension
//  3. an alias name
//  4. a variable name
//  5. an opaque literal
//
// A disabled unit does not shadow the later steps; its name simply stops
// matching. Registry failures other than "not found" abort classification,
// so a flaky backend can never silently demote a unit to a literal.
func (e *Engine) classify(ctx context.Context, seg domain.Segment) (classification, error) {
	unit, err := e.units.Lookup(ctx, seg.Text)
	switch {
	case err == nil && unit.Enabled:
		return classification{kind: domain.KindUnit, unit: unit}, nil
	case err != nil && !errors.Is(err, domain.ErrUnitNotFound):
		return classification{}, fmt.Errorf("unit lookup %q: %w", seg.Text, err)
	}

	base, ext := domain.SplitSuffix(seg.Text)
	class, lang := domain.ClassifySuffix(ext)

	if id, err := cas.Normalize(seg.Text); err == nil {
		return classification{
			kind:      domain.KindContent,
			contentID: id,
			ext:       ext,
			class:     class,
			lang:      lang,
		}, nil
	}
	if class == domain.SuffixCode || class == domain.SuffixData {
		return classification{
			kind:    domain.KindContent,
			inline:  true,
			payload: base,
			ext:     ext,
			class:   class,
			lang:    lang,
		}, nil
	}

	target, err := e.aliases.Lookup(ctx, seg.Text)
	switch {
	case err == nil:
		return classification{kind: domain.KindAlias, target: target}, nil
	case !errors.Is(err, domain.ErrAliasNotFound):
		return classification{}, fmt.Errorf("alias lookup %q: %w", seg.Text, err)
	}

	value, err := e.vars.Lookup(ctx, seg.Text)
	switch {
	case err == nil:
		return classification{kind: domain.KindVariable, value: value}, nil
	case !errors.Is(err, domain.ErrVariableNotFound):
		return classification{}, fmt.Errorf("variable lookup %q: %w", seg.Text, err)
	}

	return classification{kind: domain.KindLiteral, ext: ext, class: class}, nil
}

// suggestions returns registered names that look like a near miss for text,
// best matches first. Used to enrich ambiguity errors with "did you mean".
func (e *Engine) suggestions(ctx context.Context, text string) []string {
	var names []string
	for _, source := range []func(context.Context) ([]string, error){
		e.units.Names,
		e.aliases.Names,
		e.vars.Names,
	} {
		if got, err := source(ctx); err == nil {
			names = append(names, got...)
		}
	}

	ranks := fuzzy.RankFindFold(text, names)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)

	limit := 3
	if len(ranks) < limit {
		limit = len(ranks)
	}
	out := make([]string, 0, limit)
	for _, r := range ranks[:limit] {
		out = append(out, r.Target)
	}
	return out
}
