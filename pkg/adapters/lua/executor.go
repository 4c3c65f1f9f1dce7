// Package lua runs pipeline source on an embedded Lua interpreter. Unlike
// the process adapter it needs no binaries on PATH, so it is the one
// runtime that always works, including in tests and restricted deploys.
package lua

import (
	"context"

	glua "github.com/yuin/gopher-lua"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// Executor evaluates Lua source in-process. Each Execute call runs in a
// fresh interpreter state, so scripts cannot leak globals into each other.
//
// Scripts see the stage input as the global `input` and produce output by
// returning a value. Calling `redirect(location)` — conventionally as
// `return redirect(location)` — turns the evaluation into an early-exit
// redirect instead.
type Executor struct {
	fullStdlib bool
	globals    map[string]string
}

var _ ports.Executor = (*Executor)(nil)

// Option configures an Executor.
type Option func(*Executor)

// WithFullStdlib opens the whole Lua standard library, including os and
// io. The default is a restricted set (base, table, string, math) because
// pipeline source is often loaded from a store the operator does not
// fully control.
func WithFullStdlib() Option {
	return func(e *Executor) {
		e.fullStdlib = true
	}
}

// WithGlobals presets extra string globals visible to every script.
func WithGlobals(globals map[string]string) Option {
	return func(e *Executor) {
		if e.globals == nil {
			e.globals = make(map[string]string, len(globals))
		}
		for k, v := range globals {
			e.globals[k] = v
		}
	}
}

// New builds an embedded Lua executor.
func New(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Language reports which runtime this executor serves.
func (e *Executor) Language() domain.Language {
	return domain.LangLua
}

// safeLibs is the restricted library set opened by default.
var safeLibs = []struct {
	name string
	fn   glua.LGFunction
}{
	{glua.LoadLibName, glua.OpenPackage},
	{glua.BaseLibName, glua.OpenBase},
	{glua.TabLibName, glua.OpenTable},
	{glua.StringLibName, glua.OpenString},
	{glua.MathLibName, glua.OpenMath},
}

// Execute runs source and returns the script's first return value as a
// string. Script errors become ExecutionError; a redirect() call becomes
// a Redirect signal.
func (e *Executor) Execute(ctx context.Context, source, input string) (string, error) {
	L := glua.NewState(glua.Options{SkipOpenLibs: !e.fullStdlib})
	defer L.Close()
	L.SetContext(ctx)

	if !e.fullStdlib {
		for _, lib := range safeLibs {
			if err := L.CallByParam(glua.P{
				Fn:      L.NewFunction(lib.fn),
				NRet:    0,
				Protect: true,
			}, glua.LString(lib.name)); err != nil {
				if ctx.Err() != nil {
					err = ctx.Err()
				}
				return "", &domain.ExecutionError{Language: domain.LangLua, Detail: err.Error(), Err: err}
			}
		}
	}

	L.SetGlobal("input", glua.LString(input))
	for k, v := range e.globals {
		L.SetGlobal(k, glua.LString(v))
	}

	var sig *domain.Redirect
	L.SetGlobal("redirect", L.NewFunction(func(L *glua.LState) int {
		sig = &domain.Redirect{
			Location: L.CheckString(1),
			Status:   L.OptInt(2, 0),
		}
		return 0
	}))

	if err := L.DoString(source); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", &domain.ExecutionError{Language: domain.LangLua, Detail: err.Error(), Err: err}
	}

	if sig != nil {
		return "", sig
	}

	// First return value is the stage output; no return means empty.
	if L.GetTop() == 0 {
		return "", nil
	}
	ret := L.Get(1)
	if ret == glua.LNil {
		return "", nil
	}
	return ret.String(), nil
}
