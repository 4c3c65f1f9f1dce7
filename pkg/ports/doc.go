/*
Package ports defines the driven ports (interfaces) for the Sluice engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various registry backends, content stores, and language
runtimes.

# Key Interfaces

  - UnitRegistry: Responsible for looking up executable unit definitions.
  - BlobStore: Responsible for persisting content-addressed payloads.
  - Dispatcher: Routes (language, source) pairs to an installed Executor.
  - Evaluator: The engine surface transports (HTTP, MCP, CLI) drive.
*/
package ports
