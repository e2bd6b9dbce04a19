package engine

import (
	"github.com/zeusync/impulse/internal/core/events/bus"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/constraint"
)

// Event types published on the engine's bus.
const (
	EventBodyRest         = "body.rest"
	EventBodyWake         = "body.wake"
	EventConstraintPruned = "constraint.pruned"
	EventStepOverrun      = "step.overrun"
)

// BodyEvent is the payload of EventBodyRest and EventBodyWake.
type BodyEvent struct {
	Body body.Handle
	Step uint64
}

// ConstraintPrunedEvent is the payload of EventConstraintPruned.
type ConstraintPrunedEvent struct {
	Kind   constraint.Kind
	Bodies []body.Handle
	Step   uint64
}

// OverrunEvent is the payload of EventStepOverrun.
type OverrunEvent struct {
	// Steps is how many fixed steps ran before giving up.
	Steps int
	// Dropped is the simulation time discarded, in seconds.
	Dropped float32
	Step    uint64
}

func (e *Engine) publish(eventType string, data any) {
	if e.events == nil || !e.events.HasSubscribers(eventType) {
		return
	}
	if err := e.events.Publish(bus.NewEvent(eventType, e.source, data)); err != nil {
		e.logger.Warn("Event handler failed",
			log.String("event", eventType),
			log.Error(err))
	}
}
