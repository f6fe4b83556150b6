// Package persistence keeps a flow session alive across restarts.
//
// The Adapter sits between the flow controller and a ports.StateStore. It
// encodes state after every change and, on startup, decides whether the stored
// record can be trusted: a record that is missing, does not decode, or points
// at a step the registry no longer has is replaced by the initial state.
package persistence

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/cancelflow/internal/logging"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/ports"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// DefaultKey is the key a single-session flow is stored under.
const DefaultKey = "cancelflow"

// Outcome tells how Restore arrived at its state.
type Outcome int

const (
	// Fresh means nothing was stored (or no store is configured).
	Fresh Outcome = iota
	// Restored means the stored state was accepted.
	Restored
	// Corrupt means the stored record could not be read or decoded.
	Corrupt
	// Stale means the record decoded but its step is no longer registered.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Fresh:
		return "fresh"
	case Restored:
		return "restored"
	case Corrupt:
		return "corrupt"
	case Stale:
		return "stale"
	}
	return "unknown"
}

// Adapter persists the state of one session.
type Adapter struct {
	store  ports.StateStore
	reg    *registry.Registry
	key    string
	logger *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey sets the storage key. Defaults to DefaultKey.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithLogger sets the logger used to report recoveries and write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an adapter. A nil store disables persistence.
func New(store ports.StateStore, reg *registry.Registry, opts ...Option) *Adapter {
	a := &Adapter{
		store:  store,
		reg:    reg,
		key:    DefaultKey,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the storage key.
func (a *Adapter) Key() string {
	return a.key
}

// Restore loads the stored state, or the initial state when the record is
// absent, corrupt or stale. It never fails; the outcome says what happened.
func (a *Adapter) Restore(ctx context.Context) (domain.State, Outcome) {
	initial := a.reg.InitialState()
	if a.store == nil {
		return initial, Fresh
	}

	data, err := a.store.Load(ctx, a.key)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return initial, Fresh
	}
	if err != nil {
		a.logger.Warn("failed to load session, starting over", "key", a.key, "err", err)
		return initial, Corrupt
	}

	state, err := Decode(data)
	if err != nil {
		a.logger.Warn("discarding unreadable session", "key", a.key, "err", err)
		return initial, Corrupt
	}

	if !a.reg.Has(state.CurrentStepID) {
		a.logger.Warn("discarding session at unknown step", "key", a.key, "step", state.CurrentStepID)
		return initial, Stale
	}

	return state, Restored
}

// Save writes state. Errors are returned for callers that care; the flow
// controller only logs them.
func (a *Adapter) Save(ctx context.Context, state domain.State) error {
	if a.store == nil {
		return nil
	}
	data, err := Encode(state)
	if err != nil {
		return err
	}
	return a.store.Save(ctx, a.key, data)
}

// Clear removes the stored record.
func (a *Adapter) Clear(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	return a.store.Delete(ctx, a.key)
}
