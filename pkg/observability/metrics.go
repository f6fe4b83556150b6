package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// Metrics holds the Prometheus collectors fed by the flow.
type Metrics struct {
	StepViews   *prometheus.CounterVec
	Selections  *prometheus.CounterVec
	Completions *prometheus.CounterVec
	Resets      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		StepViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancelflow_step_views_total",
				Help: "Total number of step views",
			},
			[]string{"step_id"},
		),
		Selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancelflow_selections_total",
				Help: "Total number of accepted answers",
			},
			[]string{"step_id", "answer"},
		),
		Completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancelflow_completions_total",
				Help: "Total number of sessions reaching a final step",
			},
			[]string{"final_step"},
		),
		Resets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cancelflow_resets_total",
				Help: "Total number of session resets",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.StepViews, m.Selections, m.Completions, m.Resets} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update the counters.
//
// Free-text answers (comment steps) are counted without their text so the
// answer label stays bounded.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepView: func(ctx context.Context, e *domain.Event) {
			m.StepViews.WithLabelValues(e.StepID).Inc()
		},
		OnSelect: func(ctx context.Context, e *domain.Event) {
			answer := e.Answer
			if e.StepKind != domain.KindQuestion {
				answer = ""
			}
			m.Selections.WithLabelValues(e.StepID, answer).Inc()
		},
		OnComplete: func(ctx context.Context, e *domain.Event) {
			m.Completions.WithLabelValues(e.StepID).Inc()
		},
		OnReset: func(ctx context.Context, e *domain.Event) {
			m.Resets.Inc()
		},
	}
}
