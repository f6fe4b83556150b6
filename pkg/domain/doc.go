/*
Package domain contains the core types of the cancellation flow engine.

It defines the step graph, the session state and the actions that move it.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Step: A node in the graph (question, comment or final).
  - Route / Condition: One row of a question's transition table.
  - State: The persisted snapshot of a session (current step, feedback).
  - Action: Select or Reset, the only inputs the reducer understands.
  - Event / LifecycleHooks: Fire-and-forget notifications for analytics.
*/
package domain
