package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// DefinitionError reports a structurally invalid step.
type DefinitionError struct {
	StepID string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.StepID == "" {
		return "registry: " + e.Reason
	}
	return fmt.Sprintf("registry: step %q: %s", e.StepID, e.Reason)
}

// Registry is the immutable lookup of steps for one flow.
// It is built once and is safe for concurrent reads by any number of sessions.
//
// Construction only checks the shape of each step. Whether every transition
// lands on a registered step is left to the path validator, so that a broken
// table can be diagnosed instead of refused.
type Registry struct {
	initial string
	order   []string
	steps   map[string]domain.Step
}

// New builds a registry. order is the progress sequence; it does not affect control flow.
func New(initial string, order []string, steps ...domain.Step) (*Registry, error) {
	r := &Registry{
		initial: initial,
		order:   slices.Clone(order),
		steps:   make(map[string]domain.Step, len(steps)),
	}

	var errs []error
	for _, s := range steps {
		if s.ID == "" {
			errs = append(errs, &DefinitionError{Reason: "step with empty id"})
			continue
		}
		if _, dup := r.steps[s.ID]; dup {
			errs = append(errs, &DefinitionError{StepID: s.ID, Reason: "duplicate id"})
			continue
		}
		errs = append(errs, checkShape(s)...)
		r.steps[s.ID] = cloneStep(s)
	}

	if initial == "" {
		errs = append(errs, &DefinitionError{Reason: "initial step is not set"})
	} else if _, ok := r.steps[initial]; !ok {
		errs = append(errs, &DefinitionError{StepID: initial, Reason: "initial step is not registered"})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is like New but panics on error. Intended for package-level flows.
func MustNew(initial string, order []string, steps ...domain.Step) *Registry {
	r, err := New(initial, order, steps...)
	if err != nil {
		panic(err)
	}
	return r
}

func checkShape(s domain.Step) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, &DefinitionError{StepID: s.ID, Reason: fmt.Sprintf(format, args...)})
	}

	switch s.Kind {
	case domain.KindQuestion:
		if len(s.Options) == 0 {
			fail("question has no options")
		}
		seen := make(map[string]bool, len(s.Options))
		for _, opt := range s.Options {
			if opt == "" {
				fail("empty option")
				continue
			}
			if seen[opt] {
				fail("duplicate option %q", opt)
			}
			seen[opt] = true
		}
		if s.Next == "" {
			fail("question has no default next step")
		}
		for i, r := range s.Routes {
			if r.To == "" {
				fail("route %d has no target", i)
			}
		}
	case domain.KindComment:
		if s.Next == "" {
			fail("comment has no next step")
		}
		if len(s.Routes) > 0 || len(s.Options) > 0 {
			fail("comment cannot branch")
		}
	case domain.KindFinal:
		if s.Next != "" || len(s.Routes) > 0 {
			fail("final step cannot have outgoing edges")
		}
	default:
		fail("unknown kind %q", s.Kind)
	}
	return errs
}

// Get returns the step registered under id.
func (r *Registry) Get(id string) (domain.Step, bool) {
	s, ok := r.steps[id]
	if !ok {
		return domain.Step{}, false
	}
	return cloneStep(s), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.steps[id]
	return ok
}

// Initial returns the id every session starts (and resets) at.
func (r *Registry) Initial() string {
	return r.initial
}

// Order returns a copy of the progress sequence.
func (r *Registry) Order() []string {
	return slices.Clone(r.order)
}

// Position returns the zero-based index of id in the progress sequence, or -1.
func (r *Registry) Position(id string) int {
	return slices.Index(r.order, id)
}

// Progress computes the indicator for id.
func (r *Registry) Progress(id string) domain.Progress {
	return domain.Progress{
		Current: r.Position(id) + 1,
		Total:   len(r.order),
	}
}

// IDs returns every registered id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.steps))
	for id := range r.steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Steps returns every registered step, sorted by id.
func (r *Registry) Steps() []domain.Step {
	ids := r.IDs()
	out := make([]domain.Step, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneStep(r.steps[id]))
	}
	return out
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// InitialState returns the state a fresh or reset session starts from.
func (r *Registry) InitialState() domain.State {
	return domain.NewState(r.initial)
}

func cloneStep(s domain.Step) domain.Step {
	s.Options = slices.Clone(s.Options)
	if s.Routes != nil {
		routes := make([]domain.Route, len(s.Routes))
		for i, rt := range s.Routes {
			rt.When.AnswerIn = slices.Clone(rt.When.AnswerIn)
			if rt.When.Feedback != nil {
				fb := make(map[string]string, len(rt.When.Feedback))
				for k, v := range rt.When.Feedback {
					fb[k] = v
				}
				rt.When.Feedback = fb
			}
			routes[i] = rt
		}
		s.Routes = routes
	}
	return s
}
