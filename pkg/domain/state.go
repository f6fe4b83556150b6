package domain

import "maps"

// State is the snapshot of one flow session.
// It is the only thing persisted between runs.
type State struct {
	// CurrentStepID is the step the user is looking at.
	CurrentStepID string `json:"currentStepId"`

	// Feedback maps step ids (or semantic keys) to the answer given there.
	Feedback map[string]string `json:"feedback"`
}

// NewState creates a clean state positioned at startStepID.
func NewState(startStepID string) State {
	return State{
		CurrentStepID: startStepID,
		Feedback:      make(map[string]string),
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	fb := make(map[string]string, len(s.Feedback))
	maps.Copy(fb, s.Feedback)
	return State{CurrentStepID: s.CurrentStepID, Feedback: fb}
}

// Equal reports whether two states have the same step and feedback.
// A nil feedback map equals an empty one.
func (s State) Equal(other State) bool {
	return s.CurrentStepID == other.CurrentStepID && maps.Equal(s.Feedback, other.Feedback)
}
