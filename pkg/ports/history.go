package ports

import (
	"context"

	"github.com/aretw0/gss/pkg/domain"
)

// HistoryStore persists the solved requests of each session.
// Writes for one session are serialised by session.Manager; implementations only need
// to be safe for concurrent use across sessions.
type HistoryStore interface {
	// Append adds an entry at the end of the session's history.
	Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error

	// List returns the session's entries in chronological order.
	// An unknown session yields an empty list, not an error.
	List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error)

	// Trim keeps only the newest keep entries of the session.
	Trim(ctx context.Context, sessionID string, keep int) error

	// Clear removes every entry of the session.
	Clear(ctx context.Context, sessionID string) error

	// Sessions returns the IDs of sessions that currently hold entries.
	Sessions(ctx context.Context) ([]string, error)
}
