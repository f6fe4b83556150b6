package validator

import (
	"slices"
	"strings"

	"github.com/aretw0/cancelflow/internal/runtime"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// MaxPaths bounds enumeration on pathological graphs.
const MaxPaths = 10000

// Path is one walk from the initial step.
type Path struct {
	// Steps visited, starting at the initial id. The last entry is where the walk stopped.
	Steps []string `json:"steps"`
	// Answers given along the walk. Comments record an empty answer.
	Answers []string `json:"answers"`
	// Cycle is set when the walk stopped because it came back to a visited step.
	Cycle bool `json:"cycle,omitempty"`
	// Err is set when the walk stopped on a rejected transition.
	Err string `json:"error,omitempty"`
}

// Final returns the id the walk ended on.
func (p Path) Final() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[len(p.Steps)-1]
}

func (p Path) String() string {
	var b strings.Builder
	for i, id := range p.Steps {
		if i > 0 {
			b.WriteString(" → ")
		}
		b.WriteString(id)
		if i < len(p.Answers) && p.Answers[i] != "" {
			b.WriteString(" [")
			b.WriteString(p.Answers[i])
			b.WriteString("]")
		}
	}
	if p.Cycle {
		b.WriteString(" (cycle)")
	}
	if p.Err != "" {
		b.WriteString(" (error: ")
		b.WriteString(p.Err)
		b.WriteString(")")
	}
	return b.String()
}

// Paths enumerates every answer sequence from the initial step, depth first,
// in option order. Feedback is carried along each path, so routes that depend
// on earlier answers are followed exactly as a real session would.
func Paths(reg *registry.Registry) []Path {
	var out []Path
	var walk func(state domain.State, p Path)
	walk = func(state domain.State, p Path) {
		if len(out) >= MaxPaths {
			return
		}
		p.Steps = append(slices.Clip(p.Steps), state.CurrentStepID)

		step, ok := reg.Get(state.CurrentStepID)
		if !ok || step.IsTerminal() {
			out = append(out, p)
			return
		}

		answers := step.Options
		if step.Kind == domain.KindComment {
			answers = []string{""}
		}
		for _, a := range answers {
			next, err := runtime.Reduce(reg, state, domain.Select(a))
			branch := Path{
				Steps:   p.Steps,
				Answers: append(slices.Clip(p.Answers), a),
			}
			if err != nil {
				branch.Err = err.Error()
				out = append(out, branch)
				continue
			}
			if slices.Contains(p.Steps, next.CurrentStepID) {
				branch.Steps = append(slices.Clip(p.Steps), next.CurrentStepID)
				branch.Cycle = true
				out = append(out, branch)
				continue
			}
			walk(next, branch)
		}
	}
	walk(reg.InitialState(), Path{})
	return out
}
