package sluice_test

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/domain"
)

// ExampleRunner demonstrates the interactive loop in headless mode: paths
// arrive on the reader one per line, results leave on the writer. Wire it
// to os.Stdin/os.Stdout for an actual terminal session.
func ExampleRunner() {
	vars := memory.NewVariableRegistry(
		domain.Variable{Name: "motd", Value: "pipelines, not files"},
	)
	eng := sluice.New(sluice.WithVariables(vars))

	r := sluice.NewRunner()
	r.Input = strings.NewReader("/motd\n")
	r.Output = os.Stdout
	r.Headless = true

	if err := r.Run(context.Background(), eng); err != nil {
		log.Fatal(err)
	}
	// Output:
	// pipelines, not files
}
