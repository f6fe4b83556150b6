package memory

import (
	"context"
	"time"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// Account is a fixed ports.AccountProvider.
type Account struct {
	data domain.UserData
}

// NewAccount returns a provider that always answers with data.
func NewAccount(data domain.UserData) *Account {
	return &Account{data: data}
}

// PlaceholderAccount returns a provider with demo data: a trial user whose
// renewal is 30 days after now.
func PlaceholderAccount(now time.Time) *Account {
	days := 7
	return NewAccount(domain.UserData{
		FirstName:          "Alex",
		RenewalDate:        now.AddDate(0, 0, 30).Truncate(24 * time.Hour),
		IsTrial:            true,
		TrialDaysRemaining: &days,
	})
}

// Account implements ports.AccountProvider.
func (a *Account) Account(ctx context.Context) (domain.UserData, error) {
	out := a.data
	if a.data.TrialDaysRemaining != nil {
		days := *a.data.TrialDaysRemaining
		out.TrialDaysRemaining = &days
	}
	return out, nil
}
