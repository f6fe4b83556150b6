package domain

import "slices"

// Kind discriminates the three step variants.
type Kind string

const (
	// KindQuestion presents a prompt with a fixed list of options and branches on the answer.
	KindQuestion Kind = "question"
	// KindComment collects free text and always continues to the same step.
	KindComment Kind = "comment"
	// KindFinal is a terminal step carrying a closing message. It has no outgoing edges.
	KindFinal Kind = "final"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindQuestion, KindComment, KindFinal:
		return true
	}
	return false
}

// Step is a node in the flow graph.
type Step struct {
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
	Kind Kind   `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Prompt is the question text (question) or the invitation to write (comment).
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`

	// Options is the full, ordered list of answers a question accepts.
	// Display filtering happens outside the registry.
	Options []string `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`

	// Routes are evaluated in declared order; the first match wins.
	Routes []Route `json:"routes,omitempty" yaml:"routes,omitempty" mapstructure:"routes"`

	// Next is the fallback target of a question and the only target of a comment.
	Next string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`

	// Text is the closing message of a final step.
	Text string `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
}

// IsTerminal reports whether the step has no outgoing edges.
func (s Step) IsTerminal() bool {
	return s.Kind == KindFinal
}

// HasOption reports whether answer is one of the declared options.
func (s Step) HasOption(answer string) bool {
	return slices.Contains(s.Options, answer)
}

// Resolve computes the id of the step that follows s given the answer and the
// feedback accumulated so far. It depends on nothing else, so transitions can
// be replayed from a feedback snapshot.
//
// Questions reject answers outside Options with ErrUnknownOption.
// Comments ignore the answer. Finals return ErrTerminal.
func (s Step) Resolve(answer string, feedback map[string]string) (string, error) {
	switch s.Kind {
	case KindQuestion:
		if !s.HasOption(answer) {
			return "", ErrUnknownOption
		}
		to, _ := s.Match(answer, feedback)
		return to, nil
	case KindComment:
		return s.Next, nil
	case KindFinal:
		return "", ErrTerminal
	}
	return "", ErrUnknownKind
}

// Match evaluates the route table for answer without checking it against
// Options. It returns the target and the index of the matching route, or Next
// and -1 when no route matches.
func (s Step) Match(answer string, feedback map[string]string) (string, int) {
	for i, r := range s.Routes {
		if r.When.Matches(answer, feedback) {
			return r.To, i
		}
	}
	return s.Next, -1
}

// Targets lists every step id this step can lead to, in declaration order and
// without duplicates. Route targets come first, then Next.
func (s Step) Targets() []string {
	var out []string
	add := func(id string) {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	for _, r := range s.Routes {
		add(r.To)
	}
	add(s.Next)
	return out
}
