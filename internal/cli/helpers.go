package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows
// retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout results).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// debugHooks logs every evaluation stage, for --debug runs.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvalStart: func(ctx context.Context, e *domain.EvalEvent) {
			logger.Debug("Eval Start", "path", e.Path, "segments", e.Segments)
		},
		OnEvalEnd: func(ctx context.Context, e *domain.EvalEvent) {
			logger.Debug("Eval End", "path", e.Path, "is_error", e.IsError, "redirect", e.Redirect)
		},
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step Start", "segment", e.Segment, "index", e.Index)
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			if e.IsError {
				logger.Debug("Step End (Error)", "segment", e.Segment, "kind", e.Kind)
			} else {
				logger.Debug("Step End", "segment", e.Segment, "kind", e.Kind, "language", e.Language)
			}
		},
	}
}

// Suggest returns the closest candidate to a mistyped name, or "" when
// nothing comes close enough to be worth offering.
func Suggest(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// InterruptibleReader wraps an io.Reader (like os.Stdin) and checks for a
// cancellation signal around each read.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{
		base:   base,
		cancel: cancel,
	}
}

func (r *InterruptibleReader) Read(p []byte) (n int, err error) {
	// Check before blocking
	select {
	case <-r.cancel:
		return 0, errors.New("interrupted")
	default:
	}

	// Read (This blocks!)
	n, err = r.base.Read(p)

	// Check after returning
	select {
	case <-r.cancel:
		return 0, errors.New("interrupted")
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		err.Error() == "interrupted" ||
		err.Error() == "input error: interrupted" ||
		errors.Is(err, io.EOF) ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}
