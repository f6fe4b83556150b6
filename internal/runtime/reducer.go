package runtime

import (
	"fmt"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// Reduce applies action to state and returns the resulting state.
//
// It is pure: no I/O, no clock, no randomness, and neither argument is
// mutated. A rejected Select returns the input state together with a
// *domain.TransitionError, so callers can keep the user where they were.
// A Select on a final step is a no-op and returns state unchanged with no error.
func Reduce(reg *registry.Registry, state domain.State, action domain.Action) (domain.State, error) {
	switch action.Type {
	case domain.ActionReset:
		return reg.InitialState(), nil
	case domain.ActionSelect:
		return reduceSelect(reg, state, action.Answer)
	}
	return state, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Type)
}

func reduceSelect(reg *registry.Registry, state domain.State, answer string) (domain.State, error) {
	step, ok := reg.Get(state.CurrentStepID)
	if !ok {
		return state, &domain.TransitionError{StepID: state.CurrentStepID, Answer: answer, Err: domain.ErrUnknownStep}
	}

	// Terminal steps swallow late or duplicated submits.
	if step.IsTerminal() {
		return state, nil
	}

	next, err := step.Resolve(answer, state.Feedback)
	if err != nil {
		return state, &domain.TransitionError{StepID: step.ID, Answer: answer, Err: err}
	}
	if !reg.Has(next) {
		return state, &domain.TransitionError{StepID: step.ID, Answer: answer, Target: next, Err: domain.ErrUndefinedTarget}
	}

	out := state.Clone()
	out.CurrentStepID = next
	switch step.Kind {
	case domain.KindQuestion:
		out.Feedback[step.ID] = answer
	case domain.KindComment:
		// The text does not influence the transition but is still worth keeping.
		if answer != "" {
			out.Feedback[step.ID] = answer
		}
	}
	return out, nil
}

// Replay folds a sequence of answers over the initial state.
// It stops at the first rejected answer and returns the state reached so far.
func Replay(reg *registry.Registry, answers ...string) (domain.State, error) {
	state := reg.InitialState()
	for _, a := range answers {
		next, err := Reduce(reg, state, domain.Select(a))
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}
