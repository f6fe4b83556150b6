package catalog

import (
	"sync"

	"github.com/aretw0/cancelflow/pkg/dsl"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// Step ids of the cancellation flow.
const (
	StepReason   = "reason"
	StepPraise   = "praise"
	StepPause    = "pause"
	StepChat     = "chat"
	StepComment  = "comment"
	StepCanceled = "canceled"
	StepPaused   = "paused"
)

// Answers of the "reason" question.
const (
	ReasonNotUseful       = "Not useful right now"
	ReasonNoValue         = "Didn't see the value"
	ReasonPoorSupport     = "Poor support"
	ReasonMissingFeatures = "Missing features / hard to use"
	ReasonOther           = "Other"
)

// Answers of the "praise" question.
const (
	PraiseManyThings     = "Many things – I'll be back"
	PraiseGoodValue      = "Good value"
	PraiseHelpfulSupport = "Helpful support"
	PraiseEasyToUse      = "Easy to use"
	PraiseOther          = "Other"
)

// Answers of the retention offers.
const (
	PauseAccept = "Pause my subscription"
	ChatAccept  = "Yes, let's chat"
	Decline     = "No, cancel"
)

var (
	cancelOnce sync.Once
	cancelReg  *registry.Registry
)

// Cancel returns the canonical cancellation flow:
//
//	reason → praise → {pause | chat | comment} → {canceled | paused}
//
// The registry is built once and shared; it is immutable.
func Cancel() *registry.Registry {
	cancelOnce.Do(func() {
		cancelReg = buildCancel().MustBuild()
	})
	return cancelReg
}

func buildCancel() *dsl.Builder {
	b := dsl.New(StepReason)

	b.Question(StepReason).
		Prompt("How did we fall short?").
		Options(ReasonNotUseful, ReasonNoValue, ReasonPoorSupport, ReasonMissingFeatures, ReasonOther).
		Go(StepPraise)

	b.Question(StepPraise).
		Prompt("Did we do anything well?").
		Options(PraiseManyThings, PraiseGoodValue, PraiseHelpfulSupport, PraiseEasyToUse, PraiseOther).
		When(PraiseManyThings, StepPause).
		When(PraiseHelpfulSupport, StepChat).
		Go(StepComment)

	b.Question(StepPause).
		Prompt("Since you'll be back, how about we pause your subscription for 2 months?").
		Options(PauseAccept, Decline).
		When(PauseAccept, StepPaused).
		Go(StepComment)

	b.Question(StepChat).
		Prompt("Since you liked our support, can we chat a bit more about this?").
		Options(ChatAccept, Decline).
		When(ChatAccept, StepComment).
		Go(StepCanceled)

	b.Comment(StepComment).
		Prompt("Anything else you'd like to tell us before you go?").
		Go(StepCanceled)

	b.Final(StepCanceled).
		Text("Your subscription has been canceled.")

	b.Final(StepPaused).
		Text("Your subscription is paused. See you soon!")

	b.Order(StepReason, StepPraise, StepPause, StepChat, StepComment, StepCanceled, StepPaused)
	return b
}
