// Package repository holds the per-session analysis store.
package repository

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/okian/techmentor/internal/domain/analysis"
	"github.com/okian/techmentor/pkg/metrics"
)

// MemoryStore is a process-local Store. Nothing is persisted.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	maxSessions int
	now         func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(_ context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put replaces the session's analysis with a copy of r.
func (s *MemoryStore) Put(_ context.Context, sessionID string, r analysis.Result) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	if r == nil {
		return fmt.Errorf("put %s: nil result", sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[sessionID]; !exists && s.maxSessions > 0 && len(s.entries) >= s.maxSessions {
		s.evictOldest()
	}
	s.entries[sessionID] = Entry{
		SessionID: sessionID,
		Result:    maps.Clone(r),
		StoredAt:  s.now(),
	}
	metrics.UpdateStoredAnalyses(len(s.entries))
	return nil
}

// Get returns a copy of the session's analysis.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e.Result = maps.Clone(e.Result)
	return e, nil
}

// Delete forgets the session's analysis. Unknown sessions are ignored.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	metrics.UpdateStoredAnalyses(len(s.entries))
	return nil
}

// Count returns the number of sessions holding an analysis.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evictOldest drops the entry with the earliest StoredAt.
// Must be called with s.mu held.
func (s *MemoryStore) evictOldest() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, e := range s.entries {
		if oldestID == "" || e.StoredAt.Before(oldestAt) {
			oldestID, oldestAt = id, e.StoredAt
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}
