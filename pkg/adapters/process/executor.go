// Package process runs pipeline source through external interpreter
// binaries. One Executor wraps one interpreter invocation (python3 -c,
// node -e, sh -c); the dispatcher picks which one by language.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// InputEnvVar is the environment variable the stage input is published
// under. Programs may read it instead of (or in addition to) stdin.
const InputEnvVar = "SLUICE_INPUT"

// Executor runs source strings through a single interpreter binary.
type Executor struct {
	language domain.Language
	command  string
	args     []string
	baseDir  string
	env      map[string]string
}

var _ ports.Executor = (*Executor)(nil)

// Option configures an Executor.
type Option func(*Executor)

// WithCommand replaces the interpreter invocation, e.g. a pinned
// python3.12 binary or a wrapper script.
func WithCommand(command string, args ...string) Option {
	return func(e *Executor) {
		e.command = command
		e.args = args
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(e *Executor) {
		e.baseDir = dir
	}
}

// WithEnv merges extra variables into the process environment.
func WithEnv(env map[string]string) Option {
	return func(e *Executor) {
		if e.env == nil {
			e.env = make(map[string]string, len(env))
		}
		for k, v := range env {
			e.env[k] = v
		}
	}
}

// New builds an executor that hands source to an interpreter binary.
// The source string is appended as the interpreter's final argument.
func New(lang domain.Language, command string, args []string, opts ...Option) *Executor {
	e := &Executor{
		language: lang,
		command:  command,
		args:     args,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewPython targets the python3 binary on PATH.
func NewPython(opts ...Option) *Executor {
	return New(domain.LangPython, "python3", []string{"-c"}, opts...)
}

// NewNode targets the node binary on PATH.
func NewNode(opts ...Option) *Executor {
	return New(domain.LangJavaScript, "node", []string{"-e"}, opts...)
}

// NewShell targets the platform shell: sh -c on Unix, cmd /c on Windows.
func NewShell(opts ...Option) *Executor {
	command, args := "sh", []string{"-c"}
	if runtime.GOOS == "windows" {
		command, args = "cmd", []string{"/c"}
	}
	return New(domain.LangShell, command, args, opts...)
}

// Language reports which runtime this executor serves.
func (e *Executor) Language() domain.Language {
	return e.language
}

// Execute runs source in a subprocess and returns its trimmed stdout.
// A non-zero exit becomes an ExecutionError carrying stderr; an
// interpreter binary missing from PATH becomes ErrRuntimeUnavailable;
// output matching the redirect marker becomes a Redirect signal.
func (e *Executor) Execute(ctx context.Context, source, input string) (string, error) {
	args := make([]string, 0, len(e.args)+1)
	args = append(args, e.args...)
	args = append(args, source)

	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Dir = e.baseDir

	// Security: the stage input travels as an environment variable and on
	// stdin, never interpolated into argv. Splicing pipeline data into the
	// command line would expose the interpreter to flag injection.
	env := cmd.Environ()
	env = append(env, InputEnvVar+"="+input)
	// Deterministic order for the extra variables.
	keys := make([]string, 0, len(e.env))
	for k := range e.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+e.env[k])
	}
	cmd.Env = env
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s interpreter %q not found: %w", e.language, e.command, domain.ErrRuntimeUnavailable)
		}
		detail := err.Error()
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			detail = fmt.Sprintf("%v: %s", err, msg)
		}
		// Prefer the context error so callers can test for cancellation.
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", &domain.ExecutionError{Language: e.language, Detail: detail, Err: err}
	}

	if r, ok := domain.ParseRedirectOutput(stdout.String()); ok {
		return "", r
	}
	return strings.TrimSpace(stdout.String()), nil
}
