package cli

import (
	"context"
	"fmt"
)

// RunOptions contains the configuration for the interactive eval loop.
type RunOptions struct {
	ConfigPath string
	Debug      bool
	Headless   bool
	Watch      bool
}

// Execute handles the interactive command logic: build the stack from
// config, optionally arm hot reload, and hand stdin to the loop.
func Execute(opts RunOptions) error {
	if opts.Watch && opts.Headless {
		return fmt.Errorf("--watch and --headless cannot be used together")
	}

	logger := createLogger(opts.Debug)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	stack, err := BuildStack(cfg, logger, opts.Debug)
	if err != nil {
		return fmt.Errorf("error initializing engine: %w", err)
	}
	defer stack.Close()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if opts.Watch {
		if err := startWatchNotifier(sigCtx, stack, logger); err != nil {
			return err
		}
	}

	return runLoop(sigCtx, stack, opts)
}
