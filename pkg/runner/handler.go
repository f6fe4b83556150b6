package runner

import (
	"context"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// View is what a handler shows for one step.
type View struct {
	StepID   string          `json:"step_id"`
	Kind     domain.Kind     `json:"kind"`
	Text     string          `json:"text"`
	Options  []string        `json:"options,omitempty"`
	Progress domain.Progress `json:"progress"`
	Done     bool            `json:"done"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the current step.
	Output(ctx context.Context, view View) error

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (e.g. a rejected answer).
	// This is distinct from step content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms step text before it is printed.
// This allows markdown rendering without coupling the runner to a terminal library.
type ContentRenderer func(string) (string, error)
