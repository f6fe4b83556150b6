package validator

import (
	"fmt"
	"slices"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// outOfDomainAnswer is never a declared option. It is run through each question's
// route table to find routes that match any answer.
const outOfDomainAnswer = "\x00cancelflow:out-of-domain"

// Validate walks the registry from its initial step and reports broken
// transitions, unreachable steps and drift in the progress sequence.
//
// Every declared option of every reachable question is resolved with empty
// feedback. Route targets and default targets are also checked statically,
// so branches that depend on earlier answers are covered without guessing
// which feedback would trigger them.
func Validate(reg *registry.Registry) domain.Report {
	v := &walker{
		reg:     reg,
		visited: make(map[string]bool),
		seen:    make(map[string]bool),
	}
	v.walk()
	return v.report()
}

type walker struct {
	reg      *registry.Registry
	queue    []string
	visited  map[string]bool
	order    []string
	errors   []string
	warnings []string
	seen     map[string]bool // de-duplicates messages
}

func (v *walker) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !v.seen[msg] {
		v.seen[msg] = true
		v.errors = append(v.errors, msg)
	}
}

func (v *walker) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !v.seen[msg] {
		v.seen[msg] = true
		v.warnings = append(v.warnings, msg)
	}
}

// follow records an edge and enqueues its target when it exists.
func (v *walker) follow(from, label, target string) {
	if !v.reg.Has(target) {
		v.errorf("step %q: %s leads to undefined step %q", from, label, target)
		return
	}
	if !v.visited[target] && !slices.Contains(v.queue, target) {
		v.queue = append(v.queue, target)
	}
}

func (v *walker) walk() {
	v.queue = append(v.queue, v.reg.Initial())

	for len(v.queue) > 0 {
		id := v.queue[0]
		v.queue = v.queue[1:]
		if v.visited[id] {
			continue
		}
		v.visited[id] = true
		v.order = append(v.order, id)

		step, ok := v.reg.Get(id)
		if !ok {
			v.errorf("step %q is referenced but not registered", id)
			continue
		}

		switch step.Kind {
		case domain.KindQuestion:
			v.question(step)
		case domain.KindComment:
			next, err := step.Resolve("", nil)
			if err != nil {
				v.errorf("step %q: transition failed: %v", id, err)
				continue
			}
			v.follow(id, "transition", next)
		case domain.KindFinal:
			// No outgoing edges.
		default:
			v.errorf("step %q: unknown kind %q", id, step.Kind)
		}
	}
}

func (v *walker) question(step domain.Step) {
	for _, opt := range step.Options {
		next, err := step.Resolve(opt, nil)
		if err != nil {
			v.errorf("step %q: option %q failed to resolve: %v", step.ID, opt, err)
			continue
		}
		v.follow(step.ID, fmt.Sprintf("option %q", opt), next)
	}

	// Resolve rejects that answer, so walk the table directly. Landing on the
	// default is expected; a route that catches it shadows everything after it.
	defaultLabel := "default"
	if next, i := step.Match(outOfDomainAnswer, nil); i >= 0 {
		v.warnf("step %q: route %d (%s) catches out-of-domain answers and leads to %q", step.ID, i, step.Routes[i].When, next)
	} else {
		defaultLabel = "default (taken by out-of-domain answers)"
	}

	for i, r := range step.Routes {
		for _, a := range r.When.Answers() {
			if !step.HasOption(a) {
				v.warnf("step %q: route %d matches undeclared option %q", step.ID, i, a)
			}
		}
		v.follow(step.ID, fmt.Sprintf("route %d (%s)", i, r.When), r.To)
	}
	v.follow(step.ID, defaultLabel, step.Next)
}

func (v *walker) report() domain.Report {
	rep := domain.Report{
		Reachable: v.order,
	}

	for _, id := range v.reg.IDs() {
		if !v.visited[id] {
			rep.Unreachable = append(rep.Unreachable, id)
			v.warnf("step %q is unreachable from %q", id, v.reg.Initial())
		}
	}

	ordered := v.reg.Order()
	counted := make(map[string]int, len(ordered))
	for _, id := range ordered {
		counted[id]++
		if counted[id] == 2 {
			v.warnf("progress sequence lists %q more than once", id)
		}
	}
	for _, id := range v.order {
		if counted[id] == 0 {
			rep.MissingFromOrder = append(rep.MissingFromOrder, id)
			v.warnf("reachable step %q is missing from the progress sequence", id)
		}
	}
	for _, id := range ordered {
		if v.visited[id] || slices.Contains(rep.ExtraInOrder, id) {
			continue
		}
		rep.ExtraInOrder = append(rep.ExtraInOrder, id)
		if v.reg.Has(id) {
			v.warnf("progress sequence lists unreachable step %q", id)
		} else {
			v.warnf("progress sequence lists unregistered step %q", id)
		}
	}

	rep.Errors = v.errors
	rep.Warnings = v.warnings
	if rep.Errors == nil {
		rep.Errors = []string{}
	}
	if rep.Warnings == nil {
		rep.Warnings = []string{}
	}
	rep.Valid = len(rep.Errors) == 0
	return rep
}
