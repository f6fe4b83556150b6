package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/cancelflow/internal/logging"
	"github.com/aretw0/cancelflow/pkg/catalog"
	"github.com/aretw0/cancelflow/pkg/domain"
)

// Commands recognised on any step, comments included.
const (
	CommandQuit  = ":quit"
	CommandReset = ":reset"
)

// ErrInterrupted is returned when a signal stops the session mid-read.
var ErrInterrupted = errors.New("interrupted")

// Flow is the part of the controller the runner drives.
type Flow interface {
	Current() domain.Step
	Feedback() map[string]string
	Progress() domain.Progress
	Prompt(ctx context.Context) (string, error)
	Select(ctx context.Context, answer string) error
	Reset(ctx context.Context) error
}

// OptionFilter picks the options of step that are shown to the user.
type OptionFilter func(step domain.Step, feedback map[string]string) []string

// Runner handles the interaction loop of a flow using the provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	Handler  IOHandler
	Logger   *slog.Logger
	Filter   OptionFilter
	Renderer ContentRenderer
	Headless bool

	Input  io.Reader
	Output io.Writer
}

// NewRunner creates a Runner reading Stdin and writing Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
		Filter: catalog.VisibleOptions,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run shows steps and feeds answers to flow until a final step is shown,
// the input ends, or the user quits. Reaching the end of input is not an error.
func (r *Runner) Run(ctx context.Context, flow Flow) error {
	handler := r.resolveHandler()
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		view, err := r.view(ctx, flow)
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if err := handler.Output(ctx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
		if view.Done {
			return nil
		}

		line, err := handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if signals.Context().Err() != nil {
				return ErrInterrupted
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch strings.ToLower(line) {
		case CommandQuit:
			return nil
		case CommandReset:
			if err := flow.Reset(ctx); err != nil {
				return fmt.Errorf("reset error: %w", err)
			}
			continue
		}

		answer := resolveAnswer(flow.Current(), view.Options, line)
		if err := flow.Select(ctx, answer); err != nil {
			logger.Debug("answer rejected", "step", view.StepID, "answer", answer, "err", err)
			msg := "Please choose one of the listed options."
			if !errors.Is(err, domain.ErrUnknownOption) {
				msg = fmt.Sprintf("That answer cannot be processed right now (%v).", err)
			}
			if err := handler.SystemOutput(ctx, msg); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
	}
}

func (r *Runner) view(ctx context.Context, flow Flow) (View, error) {
	step := flow.Current()
	text, err := flow.Prompt(ctx)
	if err != nil {
		return View{}, err
	}
	v := View{
		StepID:   step.ID,
		Kind:     step.Kind,
		Text:     text,
		Progress: flow.Progress(),
		Done:     step.IsTerminal(),
	}
	if step.Kind == domain.KindQuestion {
		v.Options = step.Options
		if r.Filter != nil {
			v.Options = r.Filter(step, flow.Feedback())
		}
	}
	return v, nil
}

// resolveAnswer maps a typed line to an option: a 1-based number picks from
// the shown options, otherwise the line is matched case-insensitively against
// every option of the step. Anything else is passed through unchanged.
func resolveAnswer(step domain.Step, shown []string, line string) string {
	if step.Kind != domain.KindQuestion {
		return line
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(shown) {
		return shown[n-1]
	}
	for _, opt := range step.Options {
		if strings.EqualFold(opt, line) {
			return opt
		}
	}
	return line
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "--- cancelflow ---")
	}
	// Memoize so a second Run reuses the same input pump.
	r.Handler = th
	return th
}
