package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEvalStart EventType = "eval_start"
	EventEvalEnd   EventType = "eval_end"
	EventStepStart EventType = "step_start"
	EventStepEnd   EventType = "step_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	EvalID    string    `json:"eval_id"` // correlates all events of one evaluation
}

// EvalEvent marks the start or end of a whole path evaluation.
type EvalEvent struct {
	EventBase
	Path     string `json:"path"`
	Segments int    `json:"segments"`
	IsError  bool   `json:"is_error,omitempty"`
	Redirect bool   `json:"redirect,omitempty"`
}

// StepEvent marks the start or end of a single stage.
type StepEvent struct {
	EventBase
	Segment  string   `json:"segment"`
	Index    int      `json:"index"`
	Kind     Kind     `json:"kind,omitempty"`
	Language Language `json:"language,omitempty"`
	IsError  bool     `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnEvalStart func(context.Context, *EvalEvent)
	OnEvalEnd   func(context.Context, *EvalEvent)
	OnStepStart func(context.Context, *StepEvent)
	OnStepEnd   func(context.Context, *StepEvent)
}
