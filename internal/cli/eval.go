package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aretw0/sluice/internal/presentation/tracefmt"
	"github.com/aretw0/sluice/internal/presentation/tui"
	"github.com/aretw0/sluice/pkg/domain"
)

// EvalOptions configures a one-shot evaluation.
type EvalOptions struct {
	ConfigPath string
	Path       string
	Input      string
	Debug      bool
	// Format picks the trace rendering for --debug runs. Empty means
	// follow the path's final extension, defaulting to JSON.
	Format string
}

// EvalOnce evaluates a single path and prints the outcome to stdout. In
// debug mode the whole trace envelope is printed instead of the bare
// output, in the requested format. The returned error is the evaluation
// or setup failure; the trace, when asked for, is printed either way.
func EvalOnce(opts EvalOptions) error {
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

	res, evalErr := stack.Engine.Evaluate(sigCtx, domain.EvalRequest{
		Path:  opts.Path,
		Input: opts.Input,
		Debug: opts.Debug,
	})

	if opts.Debug {
		return printTrace(opts, res, evalErr)
	}

	if evalErr != nil {
		return evalErr
	}
	if res.Redirect != nil {
		fmt.Println(res.Redirect.Error())
		return nil
	}

	output := res.Output
	if tui.IsTerminal(os.Stdout) && finalExt(opts.Path) == "md" {
		if rendered, rerr := tui.NewRenderer()(output); rerr == nil {
			output = rendered
		}
	}
	fmt.Println(strings.TrimSpace(output))
	return nil
}

// printTrace renders the debug envelope for the run, failed or not, and
// then surfaces the evaluation error so the exit code tells the truth.
func printTrace(opts EvalOptions, res *domain.PipelineResult, evalErr error) error {
	format := tracefmt.FormatJSON
	if opts.Format != "" {
		f, err := tracefmt.ParseFormat(opts.Format)
		if err != nil {
			return err
		}
		format = f
	} else if ext := finalExt(opts.Path); ext != "" {
		format = tracefmt.ForExtension(ext)
	}

	out, err := tracefmt.Render(res, evalErr, format)
	if err != nil {
		return fmt.Errorf("failed to render trace: %w", err)
	}

	if format == tracefmt.FormatMarkdown && tui.IsTerminal(os.Stdout) {
		if rendered, rerr := tui.NewRenderer()(out); rerr == nil {
			out = rendered
		}
	}

	fmt.Println(strings.TrimRight(out, "\n"))
	return evalErr
}

// finalExt returns the extension of the leftmost segment, which names the
// shape of the final output.
func finalExt(path string) string {
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if decoded, err := url.PathUnescape(part); err == nil {
			part = decoded
		}
		_, ext := domain.SplitSuffix(part)
		return ext
	}
	return ""
}
