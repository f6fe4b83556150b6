package domain

// ActionType discriminates reducer actions.
type ActionType string

const (
	// ActionSelect answers the current step.
	ActionSelect ActionType = "select"
	// ActionReset returns to the initial step with empty feedback.
	ActionReset ActionType = "reset"
)

// Action is an input to the reducer.
type Action struct {
	Type   ActionType
	Answer string // Only meaningful for ActionSelect
}

// Select builds an ActionSelect carrying answer.
func Select(answer string) Action {
	return Action{Type: ActionSelect, Answer: answer}
}

// Reset builds an ActionReset.
func Reset() Action {
	return Action{Type: ActionReset}
}
