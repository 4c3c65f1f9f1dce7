package cli

import (
	"context"
	"fmt"
	"log/slog"
)

// startWatchNotifier arms hot reload for file-backed definitions. The file
// registry swaps its snapshot on every change by itself; this only surfaces
// the reloads to the terminal so an operator editing units sees them land.
func startWatchNotifier(ctx context.Context, stack *Stack, logger *slog.Logger) error {
	if stack.Watcher == nil {
		return fmt.Errorf("watch mode needs file-backed definitions (backends.registry.driver: file)")
	}

	watchCh, err := stack.Watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	logger.Info("Watching definitions for changes")
	go func() {
		for range watchCh {
			logger.Info("Definitions reloaded")
			fmt.Printf("\n")
			printSystemMessage("Definitions reloaded.")
		}
	}()
	return nil
}
