/*
Package cancelflow is a small finite-state engine for subscription cancellation wizards.

A flow is an immutable registry of steps. Questions offer a fixed list of
answers and branch through an ordered routing table that may look at earlier
answers. Comments collect free text. Final steps close the session. The session
itself is nothing more than the current step id and the answers given so far,
so it can be persisted, restored and replayed.

# Key Features

  - Pure transitions: Reduce(registry, state, action) has no side effects.
  - Graceful persistence: missing, corrupt or stale records fall back to the first step.
  - Path validation: every option of every reachable question is checked before users hit a dead end.
  - Fire-and-forget hooks for analytics, metrics and logs.

# Usage

	ctx := context.Background()

	flow, err := cancelflow.New(ctx,
		cancelflow.WithStore(memory.NewStore()),
		cancelflow.WithStartupValidation(nil),
	)
	if err != nil {
		log.Fatal(err)
	}

	for !flow.Done() {
		prompt, _ := flow.Prompt(ctx)
		fmt.Println(prompt, flow.Current().Options)
		// read an answer, then:
		if err := flow.Select(ctx, answer); err != nil {
			fmt.Println(err)
		}
	}

Flows can be built in Go with pkg/dsl or loaded from YAML with pkg/loader.
The built-in flows live in pkg/catalog.
*/
package cancelflow
