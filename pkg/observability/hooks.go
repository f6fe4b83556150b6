package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// Chain merges hook sets. Each event reaches every non-nil hook, in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepView: chain(sets, func(h domain.LifecycleHooks) func(context.Context, *domain.Event) { return h.OnStepView }),
		OnSelect:   chain(sets, func(h domain.LifecycleHooks) func(context.Context, *domain.Event) { return h.OnSelect }),
		OnComplete: chain(sets, func(h domain.LifecycleHooks) func(context.Context, *domain.Event) { return h.OnComplete }),
		OnReset:    chain(sets, func(h domain.LifecycleHooks) func(context.Context, *domain.Event) { return h.OnReset }),
	}
}

func chain(sets []domain.LifecycleHooks, pick func(domain.LifecycleHooks) func(context.Context, *domain.Event)) func(context.Context, *domain.Event) {
	var fns []func(context.Context, *domain.Event)
	for _, s := range sets {
		if fn := pick(s); fn != nil {
			fns = append(fns, fn)
		}
	}
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context, e *domain.Event) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}

// LogHooks logs every event at debug level, and completions and resets at info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(level slog.Level, msg string) func(context.Context, *domain.Event) {
		return func(ctx context.Context, e *domain.Event) {
			logger.Log(ctx, level, msg,
				"session", e.SessionID,
				"step", e.StepID,
				"kind", e.StepKind,
			)
		}
	}
	return domain.LifecycleHooks{
		OnStepView: log(slog.LevelDebug, "step_view"),
		OnSelect: func(ctx context.Context, e *domain.Event) {
			attrs := []any{"session", e.SessionID, "step", e.StepID}
			if e.StepKind == domain.KindQuestion {
				attrs = append(attrs, "answer", e.Answer)
			}
			logger.Log(ctx, slog.LevelDebug, "option_select", attrs...)
		},
		OnComplete: log(slog.LevelInfo, "flow_complete"),
		OnReset:    log(slog.LevelInfo, "flow_reset"),
	}
}
