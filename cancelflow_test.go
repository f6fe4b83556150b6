package cancelflow_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cancelflow"
	"github.com/aretw0/cancelflow/pkg/adapters/memory"
	"github.com/aretw0/cancelflow/pkg/analytics"
	"github.com/aretw0/cancelflow/pkg/catalog"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/dsl"
	"github.com/aretw0/cancelflow/pkg/persistence"
)

func newFlow(t *testing.T, opts ...cancelflow.Option) *cancelflow.Flow {
	t.Helper()
	f, err := cancelflow.New(context.Background(), opts...)
	require.NoError(t, err)
	return f
}

func answer(t *testing.T, f *cancelflow.Flow, answers ...string) {
	t.Helper()
	for _, a := range answers {
		require.NoError(t, f.Select(context.Background(), a), "answer %q at %q", a, f.Current().ID)
	}
}

func TestFlow_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		final   string
	}{
		{"pause accepted", []string{"Not useful right now", "Many things – I'll be back", "Pause my subscription"}, "paused"},
		{"pause declined", []string{"Didn't see the value", "Many things – I'll be back", "No, cancel"}, "canceled"},
		{"chat declined", []string{"Poor support", "Helpful support", "No, cancel"}, "canceled"},
		{"chat accepted", []string{"Missing features / hard to use", "Helpful support", "Yes, let's chat"}, "canceled"},
		{"other praise", []string{"Other", "Good value"}, "canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlow(t)
			answer(t, f, tt.answers...)
			if f.Current().Kind == domain.KindComment {
				require.NoError(t, f.Submit(context.Background(), ""))
			}

			assert.Equal(t, tt.final, f.Current().ID)
			assert.True(t, f.Done())
			assert.Equal(t, tt.answers[0], f.Feedback()["reason"])
		})
	}
}

func TestFlow_ResetAfterCompletion(t *testing.T) {
	f := newFlow(t)
	answer(t, f, "Not useful right now", "Many things – I'll be back", "Pause my subscription")
	require.Equal(t, "paused", f.Current().ID)

	require.NoError(t, f.Reset(context.Background()))

	assert.Equal(t, "reason", f.Current().ID)
	assert.Empty(t, f.Feedback())
	assert.False(t, f.Done())
}

func TestFlow_Progress(t *testing.T) {
	f := newFlow(t)
	assert.Equal(t, domain.Progress{Current: 1, Total: 7}, f.Progress())

	answer(t, f, "Other")
	assert.Equal(t, domain.Progress{Current: 2, Total: 7}, f.Progress())

	// A step missing from the progress sequence reports 0.
	b := dsl.New("a")
	b.Question("a").Options("x").Go("b")
	b.Final("b")
	b.Order("b")
	g := newFlow(t, cancelflow.WithRegistry(b.MustBuild()))
	assert.Equal(t, domain.Progress{Current: 0, Total: 1}, g.Progress())
}

func TestFlow_RejectedAnswerKeepsState(t *testing.T) {
	f := newFlow(t)
	answer(t, f, "Other")
	before := f.State()

	err := f.Select(context.Background(), "Not an option")
	require.ErrorIs(t, err, domain.ErrUnknownOption)

	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "praise", te.StepID)
	assert.True(t, f.State().Equal(before))
}

func TestFlow_UndefinedTargetSoftFails(t *testing.T) {
	b := dsl.New("start")
	b.Question("start").Options("ok", "broken").When("broken", "ghost").Go("end")
	b.Final("end")

	f := newFlow(t, cancelflow.WithRegistry(b.MustBuild()))
	err := f.Select(context.Background(), "broken")
	require.ErrorIs(t, err, domain.ErrUndefinedTarget)
	assert.Equal(t, "start", f.Current().ID)

	answer(t, f, "ok")
	assert.Equal(t, "end", f.Current().ID)
}

func TestFlow_FinalSelectIsNoOp(t *testing.T) {
	tr := analytics.NewMemoryTracker(0)
	f := newFlow(t, cancelflow.WithLifecycleHooks(analytics.Hooks(tr, nil)))
	answer(t, f, "Poor support", "Helpful support", "No, cancel")
	require.True(t, f.Done())

	events, _ := tr.Events(context.Background())
	n := len(events)

	require.NoError(t, f.Select(context.Background(), "again"))
	assert.Equal(t, "canceled", f.Current().ID)

	events, _ = tr.Events(context.Background())
	assert.Len(t, events, n, "no events for a no-op")
}

func TestFlow_CommentIsRecorded(t *testing.T) {
	f := newFlow(t)
	answer(t, f, "Other", "Good value")
	require.Equal(t, domain.KindComment, f.Current().Kind)

	require.NoError(t, f.Submit(context.Background(), "Too expensive for us"))
	assert.Equal(t, "Too expensive for us", f.Feedback()["comment"])
}

func TestFlow_Persistence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	f := newFlow(t, cancelflow.WithStore(store))
	assert.Equal(t, persistence.Fresh, f.Outcome())
	answer(t, f, "Poor support", "Helpful support")

	// A second controller over the same store resumes.
	g := newFlow(t, cancelflow.WithStore(store))
	assert.Equal(t, persistence.Restored, g.Outcome())
	assert.Equal(t, "chat", g.Current().ID)
	assert.Equal(t, map[string]string{"reason": "Poor support", "praise": "Helpful support"}, g.Feedback())

	// Reset is persisted too.
	require.NoError(t, g.Reset(ctx))
	h := newFlow(t, cancelflow.WithStore(store))
	assert.Equal(t, "reason", h.Current().ID)
	assert.Empty(t, h.Feedback())

	// Sessions are keyed.
	other := newFlow(t, cancelflow.WithStore(store), cancelflow.WithSessionID("other"))
	assert.Equal(t, persistence.Fresh, other.Outcome())
	assert.Equal(t, "other", other.SessionID())
}

func TestFlow_RestoreFallback(t *testing.T) {
	tests := []struct {
		name    string
		record  string
		outcome persistence.Outcome
	}{
		{"corrupt", `{"currentStepId": 42}`, persistence.Corrupt},
		{"garbage", `not even json`, persistence.Corrupt},
		{"stale", `{"currentStepId":"survey_v1","feedback":{"reason":"Other"}}`, persistence.Stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			require.NoError(t, store.Save(ctx, persistence.DefaultKey, []byte(tt.record)))

			f := newFlow(t, cancelflow.WithStore(store))
			assert.Equal(t, tt.outcome, f.Outcome())
			assert.Equal(t, "reason", f.Current().ID)
			assert.Empty(t, f.Feedback())

			// The bad record was replaced.
			data, err := store.Load(ctx, persistence.DefaultKey)
			require.NoError(t, err)
			assert.JSONEq(t, `{"currentStepId":"reason","feedback":{}}`, string(data))
		})
	}
}

type flakyStore struct{ mock.Mock }

func (m *flakyStore) Save(ctx context.Context, key string, record []byte) error {
	return m.Called(key).Error(0)
}

func (m *flakyStore) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *flakyStore) Delete(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

func (m *flakyStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestFlow_StorageFailuresAreLogged(t *testing.T) {
	store := new(flakyStore)
	store.On("Load", persistence.DefaultKey).Return(nil, domain.ErrSessionNotFound)
	store.On("Save", persistence.DefaultKey).Return(errors.New("quota exceeded"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	f := newFlow(t, cancelflow.WithStore(store), cancelflow.WithLogger(logger))
	require.NoError(t, f.Select(context.Background(), "Other"))

	assert.Equal(t, "praise", f.Current().ID, "the session moves on")
	assert.Contains(t, buf.String(), "failed to persist session")
	assert.Contains(t, buf.String(), "quota exceeded")
	store.AssertExpectations(t)
}

func TestFlow_Hooks(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := analytics.NewMemoryTracker(0)

	f := newFlow(t,
		cancelflow.WithLifecycleHooks(analytics.Hooks(tr, nil)),
		cancelflow.WithSessionID("s-1"),
		cancelflow.WithClock(func() time.Time { return at }),
	)
	answer(t, f, "Poor support", "Helpful support", "No, cancel")
	require.NoError(t, f.Reset(context.Background()))

	events, _ := tr.Events(context.Background())
	var got []string
	for _, e := range events {
		got = append(got, string(e.Type)+":"+e.StepID)
		assert.Equal(t, "s-1", e.SessionID)
		assert.Equal(t, at, e.Timestamp)
	}

	assert.Equal(t, []string{
		"step_view:reason",
		"option_select:reason",
		"step_view:praise",
		"option_select:praise",
		"step_view:chat",
		"option_select:chat",
		"step_view:canceled",
		"flow_complete:canceled",
		"flow_reset:canceled",
		"step_view:reason",
	}, got)
	assert.Equal(t, "Poor support", events[1].Answer)
	assert.Equal(t, domain.KindQuestion, events[1].StepKind)
	assert.Equal(t, domain.KindFinal, events[7].StepKind)
}

func TestFlow_PanickingHookIsContained(t *testing.T) {
	hooks := domain.LifecycleHooks{
		OnSelect: func(ctx context.Context, e *domain.Event) { panic("boom") },
	}
	f := newFlow(t, cancelflow.WithLifecycleHooks(hooks))

	assert.NotPanics(t, func() {
		require.NoError(t, f.Select(context.Background(), "Other"))
	})
	assert.Equal(t, "praise", f.Current().ID)
}

func TestFlow_HookMayCallBack(t *testing.T) {
	var seen []string
	var f *cancelflow.Flow
	hooks := domain.LifecycleHooks{
		OnStepView: func(ctx context.Context, e *domain.Event) {
			if f != nil {
				seen = append(seen, f.Current().ID)
			}
		},
	}
	f = newFlow(t, cancelflow.WithLifecycleHooks(hooks))
	answer(t, f, "Other")
	assert.Equal(t, []string{"praise"}, seen)
}

func TestFlow_StartupValidation(t *testing.T) {
	t.Run("clean registry", func(t *testing.T) {
		var got *domain.Report
		f := newFlow(t, cancelflow.WithStartupValidation(func(ctx context.Context, r domain.Report) { got = &r }))

		require.NotNil(t, got)
		assert.True(t, got.Valid)
		assert.Equal(t, got, f.Report())
	})

	t.Run("broken registry does not block", func(t *testing.T) {
		b := dsl.New("start")
		b.Question("start").Options("ok", "broken").When("broken", "ghost").Go("end")
		b.Final("end")
		b.Final("orphan")

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		f := newFlow(t,
			cancelflow.WithRegistry(b.MustBuild()),
			cancelflow.WithLogger(logger),
			cancelflow.WithStartupValidation(nil),
		)

		require.NotNil(t, f.Report())
		assert.False(t, f.Report().Valid)
		assert.Contains(t, buf.String(), "flow validation error")
		assert.Contains(t, buf.String(), "flow validation warning")

		answer(t, f, "ok")
		assert.True(t, f.Done())
	})

	t.Run("not requested", func(t *testing.T) {
		assert.Nil(t, newFlow(t).Report())
	})
}

func TestFlow_PromptPersonalisation(t *testing.T) {
	reg, err := catalog.Retention()
	require.NoError(t, err)

	days := 3
	account := memory.NewAccount(domain.UserData{
		FirstName:          "Ana",
		IsTrial:            true,
		TrialDaysRemaining: &days,
	})
	f := newFlow(t, cancelflow.WithRegistry(reg), cancelflow.WithAccount(account))
	assert.Equal(t, "Ana", f.UserData().FirstName)

	answer(t, f, catalog.ReasonBugs, catalog.NoThanks)
	require.Equal(t, catalog.StepLoss, f.Current().ID)

	prompt, err := f.Prompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana, before you go: canceling removes your store, your order history and your customer list and ends the 3 trial days you have left.", prompt)
}

func TestFlow_PromptRenewalDate(t *testing.T) {
	reg, err := catalog.Retention()
	require.NoError(t, err)

	account := memory.NewAccount(domain.UserData{
		RenewalDate: time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
	})
	f := newFlow(t, cancelflow.WithRegistry(reg), cancelflow.WithAccount(account))
	answer(t, f, catalog.ReasonOther, catalog.NoThanks)

	prompt, err := f.Prompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Before you go: canceling removes your store, your order history and your customer list on November 30, 2026.", prompt)
}

func TestFlow_PromptFinalText(t *testing.T) {
	f := newFlow(t)
	answer(t, f, "Not useful right now", "Many things – I'll be back", "Pause my subscription")

	text, err := f.Prompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Your subscription is paused. See you soon!", text)
}

type failingAccount struct{}

func (failingAccount) Account(ctx context.Context) (domain.UserData, error) {
	return domain.UserData{}, errors.New("billing API down")
}

func TestFlow_AccountFailureIsTolerated(t *testing.T) {
	f := newFlow(t, cancelflow.WithAccount(failingAccount{}))
	assert.Equal(t, domain.UserData{}, f.UserData())
	assert.Equal(t, "reason", f.Current().ID)
}

func TestFlow_ConcurrentSelects(t *testing.T) {
	f := newFlow(t, cancelflow.WithStore(memory.NewStore()))

	// Two racing submits of the same answer: one moves reason → praise, the
	// other is then rejected because praise has no such option.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.Select(context.Background(), "Poor support")
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, "praise", f.Current().ID)
}

func TestNew_NilRegistry(t *testing.T) {
	_, err := cancelflow.New(context.Background(), cancelflow.WithRegistry(nil))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, cancelflow.Version)
}
