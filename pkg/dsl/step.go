package dsl

import "github.com/aretw0/cancelflow/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step domain.Step
}

// Prompt sets the question text, or the invitation shown on a comment step.
func (s *StepBuilder) Prompt(text string) *StepBuilder {
	s.step.Prompt = text
	return s
}

// Options appends selectable answers to a question.
func (s *StepBuilder) Options(options ...string) *StepBuilder {
	s.step.Options = append(s.step.Options, options...)
	return s
}

// When routes a single answer to target.
func (s *StepBuilder) When(answer, target string) *StepBuilder {
	return s.Route(domain.Condition{Answer: answer}, target)
}

// WhenAny routes any of the answers to target.
func (s *StepBuilder) WhenAny(answers []string, target string) *StepBuilder {
	return s.Route(domain.Condition{AnswerIn: answers}, target)
}

// Route appends an arbitrary condition to the transition table.
// Routes are evaluated in the order they were added.
func (s *StepBuilder) Route(cond domain.Condition, target string) *StepBuilder {
	s.step.Routes = append(s.step.Routes, domain.Route{When: cond, To: target})
	return s
}

// Go sets the default target of a question, or the only target of a comment.
func (s *StepBuilder) Go(target string) *StepBuilder {
	s.step.Next = target
	return s
}

// Text sets the closing message of a final step.
func (s *StepBuilder) Text(text string) *StepBuilder {
	s.step.Text = text
	return s
}

// Build returns the underlying domain.Step.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *StepBuilder) Build() domain.Step {
	return s.step
}

// Feedback builds a condition that holds once stepID was answered with answer.
// Combine it with Route to branch on earlier answers.
func Feedback(stepID, answer string) domain.Condition {
	return domain.Condition{Feedback: map[string]string{stepID: answer}}
}
