package catalog

import (
	"slices"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// Contradiction hides Option on Step once an earlier step was answered with IfAnswer.
type Contradiction struct {
	Step     string
	Option   string
	IfStep   string
	IfAnswer string
}

// Contradictions used by the built-in flows.
var Contradictions = []Contradiction{
	{Step: StepPraise, Option: PraiseEasyToUse, IfStep: StepReason, IfAnswer: ReasonMissingFeatures},
	{Step: StepPraise, Option: PraiseHelpfulSupport, IfStep: StepReason, IfAnswer: ReasonPoorSupport},
	{Step: StepPraise, Option: PraiseGoodValue, IfStep: StepReason, IfAnswer: ReasonNoValue},
}

// VisibleOptions returns the options of step worth showing given the feedback so far.
// It only filters what is displayed; the step still accepts every declared option,
// so a persisted answer hidden here replays fine.
func VisibleOptions(step domain.Step, feedback map[string]string) []string {
	return FilterOptions(step, feedback, Contradictions)
}

// FilterOptions is VisibleOptions with an explicit rule set.
func FilterOptions(step domain.Step, feedback map[string]string, rules []Contradiction) []string {
	out := make([]string, 0, len(step.Options))
	for _, opt := range step.Options {
		if !hidden(step.ID, opt, feedback, rules) {
			out = append(out, opt)
		}
	}
	if len(out) == 0 {
		return slices.Clone(step.Options)
	}
	return out
}

func hidden(stepID, option string, feedback map[string]string, rules []Contradiction) bool {
	for _, r := range rules {
		if r.Step != stepID || r.Option != option {
			continue
		}
		if got, ok := feedback[r.IfStep]; ok && got == r.IfAnswer {
			return true
		}
	}
	return false
}
