/*
Package runner drives a cancellation flow over a line-oriented channel.

It shows the current step through an IOHandler, reads one answer, and hands
it to the flow. Options can be picked by number or by their text, and the
":reset" and ":quit" commands work on every step.

# Key Components

  - Runner: the interaction loop.
  - TextHandler: numbered options on a terminal or any io.Writer.
  - JSONHandler: one JSON view per line for scripted clients.

# Usage

	flow, _ := cancelflow.New(ctx, cancelflow.WithStore(store))
	r := runner.NewRunner(runner.WithRenderer(tui.NewRenderer()))
	if err := r.Run(ctx, flow); err != nil {
		log.Fatal(err)
	}
*/
package runner
