package domain

import "time"

// UserData describes the subscriber. It is supplied by the account collaborator,
// read by prompts that personalise copy, and never persisted or mutated by the flow.
type UserData struct {
	FirstName          string    `json:"firstName" mapstructure:"first_name"`
	RenewalDate        time.Time `json:"renewalDate" mapstructure:"renewal_date"`
	IsTrial            bool      `json:"isTrial" mapstructure:"is_trial"`
	TrialDaysRemaining *int      `json:"trialDaysRemaining,omitempty" mapstructure:"trial_days_remaining"`
}
