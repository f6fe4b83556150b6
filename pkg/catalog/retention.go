package catalog

import (
	_ "embed"
	"sync"

	"github.com/aretw0/cancelflow/pkg/loader"
	"github.com/aretw0/cancelflow/pkg/registry"
)

//go:embed retention.yaml
var retentionYAML []byte

// Retention step ids.
const (
	StepOfferExtension  = "offer_extension"
	StepOfferDiscount   = "offer_discount"
	StepOfferPark       = "offer_park"
	StepLoss            = "loss"
	StepSecondExtension = "second_extension"
	StepSecondPark      = "second_park"
	StepSecondBuildout  = "second_buildout"
	StepSecondPriority  = "second_priority"
	StepRetained        = "retained"
)

// Answers used by the retention flow.
const (
	ReasonBugs        = "Too many bugs"
	ReasonMissing     = "Missing a feature I need"
	ReasonTesting     = "Just testing the product"
	ReasonNoTime      = "I don't have time to use it"
	ReasonHardToLearn = "Too hard to learn"
	ReasonNoSales     = "Not bringing in sales / too costly"
	ReasonPoorService = "Poor service"

	KeepSubscription = "Keep my subscription"
	ContinueCancel   = "Continue canceling"
	NoThanks         = "No thanks"
)

var (
	retentionOnce sync.Once
	retentionReg  *registry.Registry
	retentionErr  error
)

// Retention returns the offer-based flow, decoded from the embedded definition.
func Retention() (*registry.Registry, error) {
	retentionOnce.Do(func() {
		retentionReg, retentionErr = loader.Parse(retentionYAML)
	})
	return retentionReg, retentionErr
}

// RetentionDefinition returns the raw embedded YAML.
func RetentionDefinition() []byte {
	out := make([]byte, len(retentionYAML))
	copy(out, retentionYAML)
	return out
}

// ByName resolves a built-in flow by name.
func ByName(name string) (*registry.Registry, bool, error) {
	switch name {
	case "", "cancel":
		return Cancel(), true, nil
	case "retention":
		reg, err := Retention()
		return reg, true, err
	}
	return nil, false, nil
}

// Names lists the built-in flows.
func Names() []string {
	return []string{"cancel", "retention"}
}
