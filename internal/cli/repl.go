package cli

import (
	"fmt"
	"os"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/internal/presentation/tui"
)

// runLoop drives the interactive one-path-per-line session over stdin.
func runLoop(sigCtx *SignalContext, stack *Stack, opts RunOptions) error {
	if !opts.Headless {
		tui.PrintBanner()
	}

	r := sluice.NewRunner()
	r.Input = NewInterruptibleReader(os.Stdin, sigCtx.Done())
	r.Output = os.Stdout
	r.Headless = opts.Headless
	if !opts.Headless && tui.IsTerminal(os.Stdout) {
		r.Renderer = tui.NewRenderer()
	}

	runErr := r.Run(sigCtx, stack.Engine)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	if sigCtx.Signal() != nil && !opts.Headless {
		fmt.Printf("\n")
		printSystemMessage("Interrupted.")
	}

	return handleExecutionError(runErr)
}
