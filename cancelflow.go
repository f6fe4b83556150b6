package cancelflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cancelflow/internal/logging"
	"github.com/aretw0/cancelflow/internal/runtime"
	"github.com/aretw0/cancelflow/internal/validator"
	"github.com/aretw0/cancelflow/pkg/catalog"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/persistence"
	"github.com/aretw0/cancelflow/pkg/ports"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// Interpolator renders step copy with {User, Feedback, Step} data.
type Interpolator = runtime.Interpolator

// ReportHandler receives the startup validation report.
type ReportHandler func(ctx context.Context, report domain.Report)

// Flow drives one cancellation session.
// It owns the session state and is safe for concurrent use: calls are
// serialised, so a double submit from a UI simply lands twice in order.
type Flow struct {
	mu sync.Mutex

	reg          *registry.Registry
	store        ports.StateStore
	sessionID    string
	persist      *persistence.Adapter
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	account      ports.AccountProvider
	interpolator Interpolator
	validate     bool
	onReport     ReportHandler
	now          func() time.Time

	state   domain.State
	user    domain.UserData
	report  *domain.Report
	outcome persistence.Outcome
}

// Option defines a functional option for configuring the Flow.
type Option func(*Flow)

// WithRegistry sets the step registry. Defaults to catalog.Cancel().
func WithRegistry(reg *registry.Registry) Option {
	return func(f *Flow) {
		f.reg = reg
	}
}

// WithStore enables persistence. Without it the session lives in memory only.
func WithStore(store ports.StateStore) Option {
	return func(f *Flow) {
		f.store = store
	}
}

// WithSessionID sets the persistence key, also stamped on every event.
// Defaults to persistence.DefaultKey.
func WithSessionID(id string) Option {
	return func(f *Flow) {
		if id != "" {
			f.sessionID = id
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Flow) {
		f.hooks = hooks
	}
}

// WithAccount sets the source of the account data used in prompts.
func WithAccount(provider ports.AccountProvider) Option {
	return func(f *Flow) {
		f.account = provider
	}
}

// WithStartupValidation runs the path validator once in New. Problems are
// logged, and handed to handler when it is not nil. They never stop the flow.
func WithStartupValidation(handler ReportHandler) Option {
	return func(f *Flow) {
		f.validate = true
		f.onReport = handler
	}
}

// WithInterpolator sets a custom interpolator for prompts.
func WithInterpolator(interp Interpolator) Option {
	return func(f *Flow) {
		f.interpolator = interp
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// New creates a flow and restores its persisted state.
//
// A stored state that is missing, unreadable or points at a step the registry
// no longer has is replaced by the initial state; see Outcome.
func New(ctx context.Context, opts ...Option) (*Flow, error) {
	f := &Flow{
		reg:          catalog.Cancel(),
		sessionID:    persistence.DefaultKey,
		interpolator: runtime.DefaultInterpolator,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.reg == nil {
		return nil, errors.New("cancelflow: registry is nil")
	}
	if f.logger == nil {
		f.logger = logging.NewNop()
	}
	f.logger = f.logger.With("session", f.sessionID)
	if f.interpolator == nil {
		f.interpolator = runtime.DefaultInterpolator
	}

	if f.validate {
		f.runValidation(ctx)
	}

	f.persist = persistence.New(f.store, f.reg,
		persistence.WithKey(f.sessionID),
		persistence.WithLogger(f.logger),
	)
	f.state, f.outcome = f.persist.Restore(ctx)
	if f.outcome == persistence.Corrupt || f.outcome == persistence.Stale {
		// Overwrite the bad record right away.
		f.save(ctx)
	}

	f.loadAccount(ctx)

	f.emit(ctx, f.event(domain.EventStepView, f.state.CurrentStepID, ""))
	return f, nil
}

func (f *Flow) runValidation(ctx context.Context) {
	rep := validator.Validate(f.reg)
	f.report = &rep

	for _, msg := range rep.Errors {
		f.logger.Error("flow validation error", "detail", msg)
	}
	for _, msg := range rep.Warnings {
		f.logger.Warn("flow validation warning", "detail", msg)
	}

	if f.onReport != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					f.logger.Error("validation report handler panicked", "panic", r)
				}
			}()
			f.onReport(ctx, rep)
		}()
	}
}

func (f *Flow) loadAccount(ctx context.Context) {
	if f.account == nil {
		return
	}
	user, err := f.account.Account(ctx)
	if err != nil {
		f.logger.Warn("failed to load account data", "err", err)
		return
	}
	f.user = user
}

// Select answers the current step.
//
// On a question the answer must be one of its options. On a comment the
// answer is the free text (it may be empty). On a final step Select does
// nothing. A rejected answer leaves the session where it was and returns a
// *domain.TransitionError.
func (f *Flow) Select(ctx context.Context, answer string) error {
	f.mu.Lock()
	prev := f.state
	step, _ := f.reg.Get(prev.CurrentStepID)

	next, err := runtime.Reduce(f.reg, prev, domain.Select(answer))
	if err != nil {
		f.mu.Unlock()
		f.logger.Warn("answer rejected", "step", prev.CurrentStepID, "err", err)
		return err
	}
	if step.IsTerminal() {
		f.mu.Unlock()
		return nil
	}

	f.state = next
	f.save(ctx)
	f.mu.Unlock()

	f.emit(ctx, f.event(domain.EventOptionSelect, step.ID, answer))
	f.emit(ctx, f.event(domain.EventStepView, next.CurrentStepID, ""))
	if s, ok := f.reg.Get(next.CurrentStepID); ok && s.IsTerminal() {
		f.emit(ctx, f.event(domain.EventFlowComplete, s.ID, ""))
	}
	return nil
}

// Submit sends the text of a comment step. It is Select under a clearer name.
func (f *Flow) Submit(ctx context.Context, text string) error {
	return f.Select(ctx, text)
}

// Reset returns to the initial step with empty feedback, from any step.
func (f *Flow) Reset(ctx context.Context) error {
	f.mu.Lock()
	from := f.state.CurrentStepID
	next, err := runtime.Reduce(f.reg, f.state, domain.Reset())
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.state = next
	f.save(ctx)
	f.mu.Unlock()

	f.emit(ctx, f.event(domain.EventFlowReset, from, ""))
	f.emit(ctx, f.event(domain.EventStepView, next.CurrentStepID, ""))
	return nil
}

// save persists the state. Caller holds the lock. Failures are logged only.
func (f *Flow) save(ctx context.Context) {
	if err := f.persist.Save(ctx, f.state); err != nil {
		f.logger.Warn("failed to persist session", "step", f.state.CurrentStepID, "err", err)
	}
}

func (f *Flow) event(typ domain.EventType, stepID, answer string) *domain.Event {
	e := &domain.Event{
		Timestamp: f.now(),
		Type:      typ,
		SessionID: f.sessionID,
		StepID:    stepID,
		Answer:    answer,
	}
	if s, ok := f.reg.Get(stepID); ok {
		e.StepKind = s.Kind
	}
	return e
}

// emit delivers e to the hooks. A panicking hook is logged and ignored.
func (f *Flow) emit(ctx context.Context, e *domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("lifecycle hook panicked", "type", e.Type, "panic", r)
		}
	}()
	f.hooks.Dispatch(ctx, e)
}

// Current returns the step the session is on.
func (f *Flow) Current() domain.Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, _ := f.reg.Get(f.state.CurrentStepID)
	return s
}

// Feedback returns a copy of the answers given so far, keyed by step id.
func (f *Flow) Feedback() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone().Feedback
}

// State returns a copy of the session state.
func (f *Flow) State() domain.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

// Progress numbers the current step within the registry's progress sequence.
// Steps outside the sequence report Current 0.
func (f *Flow) Progress() domain.Progress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reg.Progress(f.state.CurrentStepID)
}

// Done reports whether the session reached a final step.
func (f *Flow) Done() bool {
	return f.Current().IsTerminal()
}

// UserData returns the account data loaded at startup.
func (f *Flow) UserData() domain.UserData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

// Prompt renders the text of the current step: the prompt of a question or
// comment, the closing text of a final step.
func (f *Flow) Prompt(ctx context.Context) (string, error) {
	f.mu.Lock()
	step, _ := f.reg.Get(f.state.CurrentStepID)
	data := map[string]any{
		"User":     f.user,
		"Feedback": f.state.Clone().Feedback,
		"Step":     step,
	}
	f.mu.Unlock()

	text := step.Prompt
	if step.IsTerminal() {
		text = step.Text
	}
	return f.interpolator(ctx, text, data)
}

// Report returns the startup validation report, or nil when validation was not requested.
func (f *Flow) Report() *domain.Report {
	return f.report
}

// Outcome tells how the state was obtained at startup.
func (f *Flow) Outcome() persistence.Outcome {
	return f.outcome
}

// Registry returns the registry the flow runs on.
func (f *Flow) Registry() *registry.Registry {
	return f.reg
}

// SessionID returns the persistence key of the session.
func (f *Flow) SessionID() string {
	return f.sessionID
}

// Validate runs the path validator over reg.
func Validate(reg *registry.Registry) domain.Report {
	return validator.Validate(reg)
}

// Reduce applies an action to a state without any side effect.
func Reduce(reg *registry.Registry, state domain.State, action domain.Action) (domain.State, error) {
	return runtime.Reduce(reg, state, action)
}
