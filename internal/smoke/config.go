// Package smoke drives a running server through the session flow
// (analyse, read back, draft a post) from many concurrent sessions and
// checks the answers.
package smoke

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Sessions int           // Number of independent sessions to drive
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Live     bool          // Call the model instead of demo mode
	Poster   string        // Optional poster file sent with every analysis
	Verbose  bool          // Log every session
}

// Stats holds run statistics. Counters are updated by concurrent workers.
type Stats struct {
	SessionsStarted   atomic.Int64
	SessionsSucceeded atomic.Int64
	SessionsFailed    atomic.Int64
	AnalysisErrors    atomic.Int64
	PostErrors        atomic.Int64
	StartTime         time.Time
	Duration          time.Duration
}

// sessionReport is what one session observed.
type sessionReport struct {
	SessionID string
	Organizer string
	Analysis  map[string]any
	Stored    map[string]any
	Post      string
}
