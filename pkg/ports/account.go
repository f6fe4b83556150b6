package ports

import (
	"context"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// AccountProvider supplies the account data used to personalise prompts.
// It is asked again on every load; its data is never persisted with the session.
type AccountProvider interface {
	Account(ctx context.Context) (domain.UserData, error)
}
