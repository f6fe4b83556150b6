package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/cancelflow"
	"github.com/aretw0/cancelflow/internal/config"
	"github.com/aretw0/cancelflow/internal/presentation/tui"
	"github.com/aretw0/cancelflow/pkg/analytics"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/observability"
	"github.com/aretw0/cancelflow/pkg/persistence"
	"github.com/aretw0/cancelflow/pkg/runner"
)

// RunOptions contains the per-invocation switches of the run command.
type RunOptions struct {
	JSON     bool
	Headless bool
	Fresh    bool

	In  io.Reader
	Out io.Writer

	// Now stamps the placeholder account. Defaults to time.Now.
	Now func() time.Time
}

// RunSession executes a single session against the configured store.
func RunSession(ctx context.Context, cfg *config.Config, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	quiet := opts.JSON || opts.Headless

	logger, err := createLogger(cfg.Log)
	if err != nil {
		return err
	}

	reg, flowName, err := LoadRegistry(cfg.Flow)
	if err != nil {
		return err
	}

	dbs := NewDatabases()
	defer dbs.Close()

	store, release, err := OpenStore(ctx, cfg, dbs)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer release()

	if opts.Fresh {
		if err := store.Delete(ctx, cfg.Session); err != nil {
			logger.Warn("failed to clear session", "session", cfg.Session, "err", err)
		}
	}

	hooks := []domain.LifecycleHooks{observability.LogHooks(logger)}

	events, err := OpenEventLog(cfg.Analytics, dbs)
	if err != nil {
		return fmt.Errorf("failed to open analytics log: %w", err)
	}
	if events != nil {
		hooks = append(hooks, analytics.Hooks(events, logger))
	}

	if cfg.Metrics.Addr != "" {
		metricsHooks, stop, err := serveMetrics(cfg.Metrics.Addr, logger)
		if err != nil {
			return err
		}
		defer stop()
		hooks = append(hooks, metricsHooks)
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	flow, err := cancelflow.New(sigCtx,
		cancelflow.WithRegistry(reg),
		cancelflow.WithStore(store),
		cancelflow.WithSessionID(cfg.Session),
		cancelflow.WithLogger(logger),
		cancelflow.WithLifecycleHooks(observability.Chain(hooks...)),
		cancelflow.WithAccount(Account(cfg.Account, opts.Now())),
		cancelflow.WithStartupValidation(nil),
	)
	if err != nil {
		return fmt.Errorf("error initializing flow: %w", err)
	}

	if !quiet {
		tui.PrintBanner(opts.Out, flowName, cfg.Session)
	}
	logSessionStatus(opts.Out, logger, flow, quiet)

	r := runner.NewRunner(createRunnerOptions(logger, opts)...)
	runErr := r.Run(sigCtx, flow)

	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	logCompletion(opts.Out, flow, runErr, quiet, sigCtx.Signal())
	return handleExecutionError(runErr)
}

func createRunnerOptions(logger *slog.Logger, opts RunOptions) []runner.Option {
	ro := []runner.Option{
		runner.WithLogger(logger),
		runner.WithHeadless(true),
	}
	switch {
	case opts.JSON:
		ro = append(ro, runner.WithInputHandler(runner.NewJSONHandler(opts.In, opts.Out)))
	case opts.Headless:
		ro = append(ro, runner.WithInputHandler(runner.NewTextHandler(opts.In, opts.Out)))
	default:
		ro = append(ro, runner.WithInputHandler(runner.NewTextHandler(opts.In, opts.Out,
			runner.WithTextHandlerRenderer(tui.NewRenderer(80)),
		)))
	}
	return ro
}

// serveMetrics exposes a private Prometheus registry on addr.
func serveMetrics(addr string, logger *slog.Logger) (domain.LifecycleHooks, func(), error) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return domain.LifecycleHooks{}, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
		}
	}
	return metrics.Hooks(), stop, nil
}

// Stats summarizes the analytics log named by the configuration.
func Stats(ctx context.Context, cfg *config.Config, sessionID string) (analytics.Summary, error) {
	if cfg.Analytics.Path == "" {
		return analytics.Summary{}, errors.New("analytics is disabled: set analytics.path")
	}
	if _, err := os.Stat(cfg.Analytics.Path); err != nil {
		return analytics.Summary{}, fmt.Errorf("analytics log %s: %w", cfg.Analytics.Path, err)
	}

	dbs := NewDatabases()
	defer dbs.Close()

	events, err := OpenEventLog(cfg.Analytics, dbs)
	if err != nil {
		return analytics.Summary{}, err
	}

	var list []domain.Event
	if sessionID != "" {
		list, err = events.SessionEvents(ctx, sessionID)
	} else {
		list, err = events.Events(ctx)
	}
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(list), nil
}

func logSessionStatus(w io.Writer, logger *slog.Logger, flow *cancelflow.Flow, quiet bool) {
	step := flow.Current().ID
	switch flow.Outcome() {
	case persistence.Restored:
		logger.Info("Session Resumed", "session", flow.SessionID(), "step", step)
		if !quiet {
			printSystemMessage(w, "Resuming at '%s'...", step)
		}
	case persistence.Corrupt, persistence.Stale:
		logger.Warn("Session Discarded", "session", flow.SessionID(), "outcome", flow.Outcome())
		if !quiet {
			printSystemMessage(w, "Saved progress could not be used; starting over.")
		}
	default:
		logger.Info("Session Created", "session", flow.SessionID())
	}
}
