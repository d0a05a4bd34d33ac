// Package repository holds the per-session analysis store.
package repository

import (
	"context"
	"time"

	"github.com/okian/techmentor/internal/domain/analysis"
)

// Entry is the analysis currently held for a session.
type Entry struct {
	SessionID string
	Result    analysis.Result
	StoredAt  time.Time
}

// Store keeps at most one analysis per session. There is no history: a
// successful analysis overwrites the previous one.
type Store interface {
	// Put replaces the session's analysis with r.
	Put(ctx context.Context, sessionID string, r analysis.Result) error

	// Get returns the session's analysis.
	// Returns ErrNotFound if the session has none.
	Get(ctx context.Context, sessionID string) (Entry, error)

	// Delete forgets the session's analysis.
	Delete(ctx context.Context, sessionID string) error

	// Count returns the number of sessions holding an analysis.
	Count(ctx context.Context) int
}
