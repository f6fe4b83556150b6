package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/cancelflow"
	"github.com/aretw0/cancelflow/internal/presentation/tui"
	"github.com/aretw0/cancelflow/pkg/runner"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, runner.ErrInterrupted) ||
		errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(w io.Writer, flow *cancelflow.Flow, err error, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	step := flow.Current().ID
	if err == nil {
		if flow.Done() {
			printSystemMessage(w, "%s", tui.Success(fmt.Sprintf("Finished at '%s'.", step)))
		} else {
			printSystemMessage(w, "Saved at '%s'. Run again to continue.", step)
		}
		return
	}

	if isInterrupted(err) {
		switch sig {
		case os.Interrupt:
			fmt.Fprintf(w, "[CTRL+C]\n")
			printSystemMessage(w, "Interrupted at '%s'.", step)
		case nil:
			fmt.Fprintln(w)
			printSystemMessage(w, "Interrupted at '%s'.", step)
		default:
			fmt.Fprintln(w)
			printSystemMessage(w, "Terminated at '%s'.", step)
		}
	}
}
