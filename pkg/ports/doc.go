/*
Package ports defines the driven ports (interfaces) of the solver.

These interfaces decouple the core from external implementations, allowing history to
live in memory, on disk, in SQLite or in Redis without the solver noticing.

# Key Interfaces

  - HistoryStore: Persists the per-session list of solved requests.
  - DistributedLocker: Provides distributed locking when several replicas share one store.
*/
package ports
