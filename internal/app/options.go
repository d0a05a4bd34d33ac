package service

import (
	"github.com/okian/techmentor/internal/adapters/completion"
	"github.com/okian/techmentor/internal/adapters/repository"
	"github.com/okian/techmentor/internal/domain/memo"
	"github.com/okian/techmentor/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCompleter sets the generation client.
func WithCompleter(c completion.Completer) Option {
	return func(s *Service) {
		s.completer = c
	}
}

// WithStore sets the per-session analysis store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithMemo sets the analysis memo cache. A nil cache disables memoisation.
func WithMemo(c memo.Cache) Option {
	return func(s *Service) {
		s.memo = c
	}
}

// WithOffline forces demo mode for every request regardless of the
// per-request flag.
func WithOffline(offline bool) Option {
	return func(s *Service) {
		s.offline = offline
	}
}

// WithCredential overrides credential detection. Without it the service
// asks the completer, when it can report it, and otherwise assumes one.
func WithCredential(has bool) Option {
	return func(s *Service) {
		s.credential = &has
	}
}
