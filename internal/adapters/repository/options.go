// Package repository holds the per-session analysis store.
package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source used for StoredAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxSessions bounds the number of sessions kept. When the bound is hit
// the session stored longest ago is dropped. Zero or negative means unbounded.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStore) {
		s.maxSessions = n
	}
}
