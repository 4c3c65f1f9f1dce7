/*
Package dsl provides fluent Go builders for Sluice definitions and paths.

It covers the two jobs that are awkward to do by hand: seeding an engine
with units, aliases and variables without YAML files, and assembling
path strings whose segments need URL escaping. Both benefit from IDE
autocompletion and type checking, which is useful for dynamic setups and
tests.

Example usage:

	b := dsl.New()
	b.Unit("shout").
		Lua(`return string.upper(input)`).
		Describe("Uppercases whatever flows in")
	b.Alias("s", "shout")
	b.Var("name", "world")

	defs, err := b.Build()
	if err != nil {
		// a definition failed validation
	}

	engine := sluice.New(
		sluice.WithUnits(defs.Units),
		sluice.WithAliases(defs.Aliases),
		sluice.WithVariables(defs.Variables),
	)

	path := dsl.Path().Seg("s").Text("hello world").String()
	res, err := engine.Evaluate(ctx, domain.EvalRequest{Path: path})
*/
package dsl
