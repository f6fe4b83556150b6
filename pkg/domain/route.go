package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Route is one row of a question's transition table.
type Route struct {
	When Condition `json:"when" yaml:"when" mapstructure:"when"`
	To   string    `json:"to" yaml:"to" mapstructure:"to"`
}

// Condition is a predicate over the current answer and the accumulated feedback.
// Every clause that is set must hold. A zero Condition matches anything.
type Condition struct {
	// Answer matches a single option.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty" mapstructure:"answer"`

	// AnswerIn matches any of several options.
	AnswerIn []string `json:"answer_in,omitempty" yaml:"answer_in,omitempty" mapstructure:"answer_in"`

	// Feedback requires earlier answers, keyed by step id.
	Feedback map[string]string `json:"feedback,omitempty" yaml:"feedback,omitempty" mapstructure:"feedback"`
}

// Matches evaluates the condition.
func (c Condition) Matches(answer string, feedback map[string]string) bool {
	if c.Answer != "" && c.Answer != answer {
		return false
	}
	if len(c.AnswerIn) > 0 && !slices.Contains(c.AnswerIn, answer) {
		return false
	}
	for k, want := range c.Feedback {
		if got, ok := feedback[k]; !ok || got != want {
			return false
		}
	}
	return true
}

// Answers returns the options this condition constrains the answer to.
// An empty result means the condition accepts any answer.
func (c Condition) Answers() []string {
	var out []string
	if c.Answer != "" {
		out = append(out, c.Answer)
	}
	for _, a := range c.AnswerIn {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

// IsZero reports whether the condition has no clauses.
func (c Condition) IsZero() bool {
	return c.Answer == "" && len(c.AnswerIn) == 0 && len(c.Feedback) == 0
}

// String renders the condition for diagnostics and graph labels.
func (c Condition) String() string {
	if c.IsZero() {
		return "always"
	}
	var parts []string
	if answers := c.Answers(); len(answers) > 0 {
		parts = append(parts, strings.Join(answers, " | "))
	}
	keys := make([]string, 0, len(c.Feedback))
	for k := range c.Feedback {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, c.Feedback[k]))
	}
	return strings.Join(parts, " & ")
}
