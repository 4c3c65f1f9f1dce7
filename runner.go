package sluice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
)

// Runner drives an interactive evaluation loop over provided IO: one
// pipeline path per line, the result printed back. This allows for easy
// testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms output before printing it.
// This allows for TUI rendering (markdown to ANSI) without coupling the
// core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. Input and Output must be set by the
// caller (os.Stdin/os.Stdout for an actual terminal).
func NewRunner() *Runner {
	return &Runner{}
}

// Run reads paths line by line and evaluates each against the engine until
// EOF, "exit" or "quit". Evaluation failures are printed and the loop
// continues; only IO failures end it with an error.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	writer := r.Output
	if writer == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintln(writer, "--- sluice (one path per line, \"exit\" to leave) ---")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !r.Headless {
			fmt.Fprint(writer, "> ")
		}

		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Evaluate a final unterminated line before leaving.
				if path := strings.TrimSpace(text); path != "" {
					r.evaluate(ctx, engine, writer, path)
				}
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		path := strings.TrimSpace(text)
		if path == "" {
			continue
		}
		if path == "exit" || path == "quit" {
			if !r.Headless {
				fmt.Fprintln(writer, "Bye!")
			}
			return nil
		}

		r.evaluate(ctx, engine, writer, path)
	}
}

func (r *Runner) evaluate(ctx context.Context, engine *Engine, writer io.Writer, path string) {
	res, err := engine.Evaluate(ctx, domain.EvalRequest{Path: path})
	if err != nil {
		fmt.Fprintf(writer, "error: %v\n", err)
		return
	}
	if res.Redirect != nil {
		fmt.Fprintln(writer, res.Redirect.Error())
		return
	}

	output := res.Output
	if r.Renderer != nil {
		if rendered, rerr := r.Renderer(output); rerr == nil {
			output = rendered
		}
	}
	fmt.Fprintln(writer, strings.TrimSpace(output))
}
