package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/aretw0/cancelflow/pkg/domain"
)

// TopOptionsLimit caps Summary.TopOptions.
const TopOptionsLimit = 5

// OptionCount is how often an answer was picked.
type OptionCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// Summary aggregates an event log.
type Summary struct {
	TotalEvents        int           `json:"totalEvents"`
	StepViews          int           `json:"stepViews"`
	OptionSelections   int           `json:"optionSelections"`
	Completions        int           `json:"completions"`
	Resets             int           `json:"resets"`
	TopOptions         []OptionCount `json:"topOptions"`
	AvgSessionDuration time.Duration `json:"avgSessionDuration"`
	CompletionRate     int           `json:"completionRate"` // Percent of ended sessions that completed
}

// Summarize computes a Summary from events in chronological order.
//
// Durations are measured per session id. Within a session, a run goes from
// its first event to the next completion or reset, and the event after that
// starts the next run. Events without a session id form one stream. Runs
// still open at the end of the log do not count towards the average duration.
func Summarize(events []domain.Event) Summary {
	s := Summary{TotalEvents: len(events), TopOptions: []OptionCount{}}

	counts := map[string]int{}
	starts := map[string]time.Time{} // Open runs by session id
	var (
		total time.Duration
		runs  int
	)

	for _, e := range events {
		start, open := starts[e.SessionID]
		if !open {
			start = e.Timestamp
			starts[e.SessionID] = start
		}

		switch e.Type {
		case domain.EventStepView:
			s.StepViews++
		case domain.EventOptionSelect:
			s.OptionSelections++
			if e.Answer != "" {
				counts[e.Answer]++
			}
		case domain.EventFlowComplete, domain.EventFlowReset:
			if e.Type == domain.EventFlowComplete {
				s.Completions++
			} else {
				s.Resets++
			}
			total += e.Timestamp.Sub(start)
			runs++
			delete(starts, e.SessionID)
		}
	}

	for opt, n := range counts {
		s.TopOptions = append(s.TopOptions, OptionCount{Option: opt, Count: n})
	}
	sort.Slice(s.TopOptions, func(i, j int) bool {
		a, b := s.TopOptions[i], s.TopOptions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Option < b.Option
	})
	if len(s.TopOptions) > TopOptionsLimit {
		s.TopOptions = s.TopOptions[:TopOptionsLimit]
	}

	if runs > 0 {
		s.AvgSessionDuration = total / time.Duration(runs)
	}
	if ended := s.Completions + s.Resets; ended > 0 {
		s.CompletionRate = int(math.Round(100 * float64(s.Completions) / float64(ended)))
	}
	return s
}
