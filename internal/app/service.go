// Package service orchestrates event analysis and post drafting on top of
// the completion client, the session store and the memo cache.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/okian/techmentor/internal/adapters/completion"
	"github.com/okian/techmentor/internal/adapters/poster"
	"github.com/okian/techmentor/internal/adapters/repository"
	"github.com/okian/techmentor/internal/domain/analysis"
	"github.com/okian/techmentor/internal/domain/memo"
	"github.com/okian/techmentor/pkg/logger"
	"github.com/okian/techmentor/pkg/metrics"
)

// ErrNoAnalysis is returned by DraftPost when the session has no stored result.
var ErrNoAnalysis = errors.New("no analysis available; analyse an event first")

// Metric label values.
const (
	kindAnalysis = "analysis"
	kindPost     = "post"
	outcomeOK    = "ok"
	outcomeError = "error"
)

// AnalyzeRequest is one "Analyse" action.
type AnalyzeRequest struct {
	SessionID string
	Organizer string
	Message   string
	Poster    *poster.Image
	Offline   bool
}

// Service handles analysis and post requests. Each call is synchronous and
// independent; the store keeps the last successful result per session.
type Service struct {
	completer  completion.Completer
	store      repository.Store
	memo       memo.Cache
	offline    bool
	credential *bool
	logger     logger.Logger
	startedAt  time.Time
}

// New constructs a Service. Without a store an in-memory one is used.
func New(ctx context.Context, opts ...Option) *Service {
	s := &Service{startedAt: time.Now()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")
	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
	}
	return s
}

// HasCredential reports whether live calls can be attempted.
func (s *Service) HasCredential() bool {
	if s.credential != nil {
		return *s.credential
	}
	if s.completer == nil {
		return false
	}
	if c, ok := s.completer.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// Offline reports whether demo mode is forced for every request.
func (s *Service) Offline() bool { return s.offline }

// Analyze runs one analysis. A successful result replaces the session's
// stored result; a failure leaves it untouched.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) analysis.Outcome {
	offline := s.offline || req.Offline
	mode := memo.ModeLive
	if offline {
		mode = memo.ModeOffline
	}

	out := s.analyze(ctx, req, mode)

	if r, ok := out.Result(); ok {
		metrics.RecordAnalysis(string(mode), outcomeOK)
		if err := s.store.Put(ctx, req.SessionID, r); err != nil {
			s.logger.Warn(ctx, "failed to store analysis",
				logger.String("session", req.SessionID),
				logger.Error(err),
			)
		}
		return out
	}

	metrics.RecordAnalysis(string(mode), outcomeError)
	e, _ := out.Failure()
	s.logger.Info(ctx, "analysis failed",
		logger.String("session", req.SessionID),
		logger.String("mode", string(mode)),
		logger.String("error", e.Message),
	)
	return out
}

func (s *Service) analyze(ctx context.Context, req AnalyzeRequest, mode memo.Mode) analysis.Outcome {
	if mode == memo.ModeOffline {
		return analysis.Success(analysis.DemoResult(req.Organizer))
	}
	if !s.HasCredential() {
		return analysis.FailureFrom(completion.ErrNotConfigured)
	}

	imageHash := ""
	if req.Poster != nil {
		imageHash = req.Poster.Hash
	}
	key := memo.NewKey(req.Organizer, req.Message, imageHash, mode)
	if s.memo != nil {
		if r, ok := s.memo.Get(ctx, key); ok {
			metrics.RecordMemoHit()
			s.logger.Debug(ctx, "analysis served from memo", logger.String("key", string(key)))
			return analysis.Success(r)
		}
		metrics.RecordMemoMiss()
	}

	parts := []completion.Part{completion.Text(analysis.BuildAnalysisPrompt(req.Organizer))}
	if req.Poster != nil {
		parts = append(parts, completion.Blob(req.Poster.Data, req.Poster.MIMEType()))
		metrics.RecordPosterBytes(len(req.Poster.Data))
	}
	if strings.TrimSpace(req.Message) != "" {
		parts = append(parts, completion.Text(req.Message))
	}

	raw, err := s.complete(ctx, kindAnalysis, parts...)
	if err != nil {
		return analysis.FailureFrom(err)
	}

	out := analysis.Parse(raw)
	if r, ok := out.Result(); ok {
		if s.memo != nil {
			s.memo.Put(ctx, key, r)
		}
		return out
	}
	metrics.RecordParseFailure()
	return out
}

// DraftPost writes a short post about the session's stored event. The
// stored result is never modified.
func (s *Service) DraftPost(ctx context.Context, sessionID, reflection string, offline bool) (string, error) {
	entry, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordPostDraft(outcomeError)
			return "", ErrNoAnalysis
		}
		metrics.RecordPostDraft(outcomeError)
		return "", err
	}

	eventName := entry.Result.EventName()
	if s.offline || offline {
		metrics.RecordPostDraft(outcomeOK)
		return analysis.DemoPost(eventName), nil
	}
	if !s.HasCredential() {
		metrics.RecordPostDraft(outcomeError)
		return "", completion.ErrNotConfigured
	}

	text, err := s.complete(ctx, kindPost, completion.Text(analysis.BuildPostPrompt(eventName, reflection)))
	if err != nil {
		metrics.RecordPostDraft(outcomeError)
		s.logger.Info(ctx, "post draft failed",
			logger.String("session", sessionID),
			logger.Error(err),
		)
		return "", err
	}
	metrics.RecordPostDraft(outcomeOK)
	return text, nil
}

// Latest returns the session's stored result, if any.
func (s *Service) Latest(ctx context.Context, sessionID string) (analysis.Result, bool) {
	entry, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, false
	}
	return entry.Result, true
}

// Forget drops the session's stored result.
func (s *Service) Forget(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *Service) complete(ctx context.Context, kind string, parts ...completion.Part) (string, error) {
	if s.completer == nil {
		return "", completion.ErrNotConfigured
	}
	start := time.Now()
	text, err := s.completer.Complete(ctx, parts...)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordCompletion(kind, outcomeError, latency)
		return "", err
	}
	metrics.RecordCompletion(kind, outcomeOK, latency)
	return text, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	stored := s.store.Count(ctx)
	metrics.UpdateStoredAnalyses(stored)

	stats := map[string]interface{}{
		"offline":        s.offline,
		"credential":     s.HasCredential(),
		"storedAnalyses": stored,
		"uptimeSeconds":  int64(time.Since(s.startedAt).Seconds()),
	}
	if s.memo != nil {
		stats["memoEntries"] = s.memo.Len()
	}
	return stats
}
