/*
Package domain contains the core domain models of the Golden Section Search service.

It defines the values exchanged between the expression compiler, the search engine and the
result assembler, plus the error taxonomy surfaced to users. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - SearchRequest: The bracket [A, B], the tolerance and the optimisation Mode.
  - IterationRecord: One narrowing step of the search, appended exactly once per step.
  - SearchResult: The terminal estimate, the full trace and the convergence Status.
  - HistoryEntry: What a session history store persists for one solved request.

# Errors

Every user-facing failure carries a stable Kind tag (see KindOf) and a plain-language message.
*/
package domain
