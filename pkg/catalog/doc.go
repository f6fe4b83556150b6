// Package catalog holds the built-in cancellation flows.
//
// Cancel is the canonical survey: reason, praise, then a pause or chat offer
// before the final step. Retention is the offer-driven variant, defined in YAML,
// that picks its offers from the cancellation reason.
package catalog
