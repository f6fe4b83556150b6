package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownStep is returned when a step id is not present in the registry.
var ErrUnknownStep = errors.New("unknown step")

// ErrUnknownOption is returned when a question receives an answer it does not declare.
var ErrUnknownOption = errors.New("answer is not an option of this step")

// ErrUndefinedTarget is returned when a transition leads to a step that is not in the registry.
var ErrUndefinedTarget = errors.New("transition leads to an undefined step")

// ErrTerminal is returned when a transition is requested from a final step.
var ErrTerminal = errors.New("step is terminal")

// ErrUnknownKind is returned for steps whose kind is not question, comment or final.
var ErrUnknownKind = errors.New("unknown step kind")

// ErrUnknownAction is returned when the reducer receives an action type it does not handle.
var ErrUnknownAction = errors.New("unknown action")

// TransitionError describes a rejected Select. It wraps the underlying cause.
type TransitionError struct {
	StepID string
	Answer string
	Target string // Empty unless the cause is ErrUndefinedTarget
	Err    error
}

func (e *TransitionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("step %q with answer %q: %v: %q", e.StepID, e.Answer, e.Err, e.Target)
	}
	return fmt.Sprintf("step %q with answer %q: %v", e.StepID, e.Answer, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
