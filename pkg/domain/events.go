package domain

import (
	"context"
	"time"

	"github.com/aretw0/tandem/pkg/vdom"
)

// EngineEvent is an outcome queued by the engine and handed out by
// DrainEvents. Evaluated is currently the only variant.
type EngineEvent interface {
	EventURI() string
	isEngineEvent()
}

// Evaluated is queued once per successful document evaluation.
type Evaluated struct {
	URI  string
	Node vdom.Node
}

func (e Evaluated) EventURI() string { return e.URI }
func (Evaluated) isEngineEvent()     {}

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventLoad     EventType = "load"
	EventEvaluate EventType = "evaluate"
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	URI       string        `json:"uri"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LoadEvent reports a dependency graph load, forced or cached.
type LoadEvent struct {
	EventBase
	Forced bool `json:"forced"`
	Files  int  `json:"files"`
}

// EvaluateEvent reports a document evaluation.
type EvaluateEvent struct {
	EventBase
	Part  string `json:"part,omitempty"`
	Nodes int    `json:"nodes"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnLoad     func(context.Context, *LoadEvent)
	OnEvaluate func(context.Context, *EvaluateEvent)
}
