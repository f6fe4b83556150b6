package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepView     EventType = "step_view"
	EventOptionSelect EventType = "option_select"
	EventFlowComplete EventType = "flow_complete"
	EventFlowReset    EventType = "flow_reset"
)

// Event is a fire-and-forget notification about what happened in a session.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	StepID    string    `json:"step_id"`
	StepKind  Kind      `json:"step_kind,omitempty"`
	Answer    string    `json:"answer,omitempty"` // Set on option_select
}

// LifecycleHooks defines callbacks for flow observability.
// Any of them may be nil. The flow never depends on their outcome.
type LifecycleHooks struct {
	OnStepView func(context.Context, *Event)
	OnSelect   func(context.Context, *Event)
	OnComplete func(context.Context, *Event)
	OnReset    func(context.Context, *Event)
}

// Dispatch routes e to the hook matching its type.
func (h LifecycleHooks) Dispatch(ctx context.Context, e *Event) {
	var fn func(context.Context, *Event)
	switch e.Type {
	case EventStepView:
		fn = h.OnStepView
	case EventOptionSelect:
		fn = h.OnSelect
	case EventFlowComplete:
		fn = h.OnComplete
	case EventFlowReset:
		fn = h.OnReset
	}
	if fn != nil {
		fn(ctx, e)
	}
}
