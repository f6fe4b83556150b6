/*
Package ports defines the driven ports (interfaces) of the cancellation flow.

These interfaces decouple the flow controller from external implementations,
allowing sessions to be kept in memory, on disk, in SQLite or in Redis.

# Key Interfaces

  - StateStore: Persists serialized session state under a key.
  - AccountProvider: Supplies the account data shown in prompts. It is never persisted.
*/
package ports
