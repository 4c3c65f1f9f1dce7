/*
Package domain contains the core domain models and business logic for the Sluice engine.

It defines the fundamental entities of the path pipeline, such as Segments,
executable Units, and evaluation results. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Segment: One component of a request path, classified before resolution.
  - Unit: A named, registered piece of executable source plus its language tag.
  - PipelineResult: The outcome of evaluating a path (output, redirect, trace).
  - StepResult: One entry of the step-by-step trace recorded in debug mode.
*/
package domain
