package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventStepView, StepID: "reason"})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventStepView, StepID: "reason"})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventOptionSelect, StepID: "reason", StepKind: domain.KindQuestion, Answer: "Other"})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventOptionSelect, StepID: "comment", StepKind: domain.KindComment, Answer: "free text"})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventFlowComplete, StepID: "canceled"})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventFlowReset, StepID: "reason"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepViews.WithLabelValues("reason")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("reason", "Other")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("comment", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions.WithLabelValues("canceled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resets))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var calls []string
	record := func(name string) func(context.Context, *domain.Event) {
		return func(ctx context.Context, e *domain.Event) { calls = append(calls, name+":"+string(e.Type)) }
	}

	hooks := observability.Chain(
		domain.LifecycleHooks{OnStepView: record("a"), OnReset: record("a")},
		domain.LifecycleHooks{},
		domain.LifecycleHooks{OnStepView: record("b")},
	)

	assert.Nil(t, hooks.OnSelect)
	assert.Nil(t, hooks.OnComplete)

	ctx := context.Background()
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventStepView})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventFlowReset})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventOptionSelect})

	assert.Equal(t, []string{"a:step_view", "b:step_view", "a:flow_reset"}, calls)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventStepView, StepID: "reason"})
	hooks.Dispatch(ctx, &domain.Event{Type: domain.EventFlowComplete, SessionID: "s1", StepID: "canceled"})

	out := buf.String()
	assert.NotContains(t, out, "step_view", "debug events are filtered at info")
	assert.Contains(t, out, "flow_complete")
	assert.Contains(t, out, "session=s1")
	assert.Contains(t, out, "step=canceled")
}
