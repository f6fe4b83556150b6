package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// ErrCorrupt marks a record that does not decode into a session state.
var ErrCorrupt = errors.New("corrupt session record")

// record is the persisted layout. Account data is deliberately absent.
type record struct {
	CurrentStepID *string           `json:"currentStepId"`
	Feedback      map[string]string `json:"feedback"`
}

// Encode serializes a state as {"currentStepId": ..., "feedback": {...}}.
func Encode(state domain.State) ([]byte, error) {
	fb := state.Feedback
	if fb == nil {
		fb = map[string]string{}
	}
	id := state.CurrentStepID
	return json.Marshal(record{CurrentStepID: &id, Feedback: fb})
}

// Decode parses a persisted record. Anything that does not have the expected
// shape (bad JSON, a missing or empty step id, non-string feedback values)
// fails with ErrCorrupt. Unknown fields are tolerated.
func Decode(data []byte) (domain.State, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.State{}, fmt.Errorf("%w: empty record", ErrCorrupt)
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if r.CurrentStepID == nil || *r.CurrentStepID == "" {
		return domain.State{}, fmt.Errorf("%w: missing currentStepId", ErrCorrupt)
	}

	state := domain.NewState(*r.CurrentStepID)
	for k, v := range r.Feedback {
		state.Feedback[k] = v
	}
	return state, nil
}
