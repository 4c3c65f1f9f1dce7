package sluice_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/registry"
)

// ExampleNew demonstrates evaluating a path against in-memory collaborators.
// This is useful for testing, embedded scenarios, or when you don't want to
// rely on installed interpreters.
func ExampleNew() {
	// 1. Register a unit: a named program in some language.
	units := memory.NewUnitRegistry(domain.Unit{
		Name:     "shout",
		Source:   "print(input.upper())",
		Language: domain.LangPython,
		Enabled:  true,
	})

	// 2. Stand in for python with the echo placeholder, so the example runs
	// without a python3 binary on PATH.
	dispatch := registry.NewRegistry()
	dispatch.Install(domain.LangPython, registry.Placeholder{})

	eng := sluice.New(
		sluice.WithUnits(units),
		sluice.WithDispatcher(dispatch),
	)

	// 3. Evaluate right to left: "greeting.txt" seeds the pipeline with the
	// inline payload "greeting", which "shout" then consumes.
	res, err := eng.Evaluate(context.Background(), domain.EvalRequest{
		Path:  "/shout/greeting.txt",
		Debug: true,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Output)
	for _, step := range res.Trace {
		fmt.Printf("%d %s (%s)\n", step.Index, step.Segment, step.Kind)
	}
	// Output:
	// greeting
	// 1 greeting.txt (content)
	// 0 shout (unit)
}
