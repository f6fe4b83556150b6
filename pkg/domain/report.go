package domain

import (
	"errors"
	"slices"
)

// Report is the outcome of validating a registry.
type Report struct {
	// Valid is true when no errors were found. Warnings do not affect it.
	Valid bool `json:"valid"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	// Reachable lists the ids visited from the initial step, in visit order.
	Reachable []string `json:"reachable"`

	// Unreachable lists registered ids that traversal never visited (sorted).
	Unreachable []string `json:"unreachable,omitempty"`

	// MissingFromOrder lists reachable ids absent from the ordered sequence.
	MissingFromOrder []string `json:"missing_from_order,omitempty"`

	// ExtraInOrder lists ordered ids that are not reachable.
	ExtraInOrder []string `json:"extra_in_order,omitempty"`
}

// Err joins the report errors into a single error, or returns nil when valid.
func (r *Report) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, msg := range r.Errors {
		errs = append(errs, errors.New(msg))
	}
	return errors.Join(errs...)
}

// IsReachable reports whether id was visited during validation.
func (r *Report) IsReachable(id string) bool {
	return slices.Contains(r.Reachable, id)
}
