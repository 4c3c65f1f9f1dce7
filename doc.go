/*
Package sluice evaluates slash-delimited paths as data pipelines.

A path like /to-html/shout/greeting.txt is read right to left: the rightmost
segment produces a seed value, and each segment to its left consumes the
value and produces the next one. The leftmost segment's output is the result
of the whole path.

# Concept

Each segment is classified, in a fixed order of precedence, as an executable
unit (a named program in a registry), a content reference (the hash id of a
stored payload, verified on read), an inline payload (a literal with a
recognized extension), an alias, a variable, or an opaque literal. Units run
through per-language executors, so one pipeline can chain python, node,
shell and Lua stages. A stage can also answer with a redirect signal, which
ends evaluation early and surfaces as a real redirect on HTTP hosts.

This Hexagonal Architecture keeps the evaluator decoupled from its
collaborators: registries, the blob store and the executor table are ports,
with in-memory, filesystem and Redis adapters included. The engine can be
embedded in any interface: CLI, HTTP server, or agent infrastructure over
MCP.

# Key Features

  - Right-to-left evaluation: paths compose like unix pipes, the URL is the
    program.
  - Content addressing: payloads are stored and fetched by SHA-256 id, and
    every read is verified against the id that named it.
  - Multi-language units: python, node, shell subprocesses and in-process
    Lua, behind one dispatch interface.
  - Zero-overhead tracing: per-stage trace records exist only when a caller
    asks for them.

# Usage

Initialize the engine with the collaborators you want; everything defaults
to in-memory.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/sluice"
		"github.com/aretw0/sluice/pkg/adapters/memory"
		"github.com/aretw0/sluice/pkg/domain"
	)

	func main() {
		// Register a unit: a named python program.
		units := memory.NewUnitRegistry(domain.Unit{
			Name:     "shout",
			Source:   "print(input.upper())",
			Language: domain.LangPython,
			Enabled:  true,
		})

		eng := sluice.New(sluice.WithUnits(units))

		// Evaluate: "greeting" is an inline payload, "shout" consumes it.
		res, err := eng.Evaluate(context.Background(), domain.EvalRequest{
			Path: "/shout/greeting.txt",
		})
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(res.Output) // GREETING
	}
*/
package sluice
