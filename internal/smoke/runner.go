package smoke

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/techmentor/pkg/logger"
)

// ErrFailedSessions is returned when any session did not verify.
var ErrFailedSessions = errors.New("some sessions failed")

// Run executes the complete smoke test and returns the statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("smoke")

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sessions", config.Sessions),
		logger.Int("workers", config.Workers),
		logger.Bool("live", config.Live),
	)

	var poster []byte
	if config.Poster != "" {
		data, err := os.ReadFile(config.Poster)
		if err != nil {
			return stats, fmt.Errorf("failed to read poster: %w", err)
		}
		poster = data
	}

	c := newClient(config.BaseURL, config.Timeout)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan int, workers*2)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				runSession(ctx, c, config, i, poster, stats, log)
			}
		}()
	}

dispatch:
	for i := 0; i < config.Sessions; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Duration = time.Since(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.SessionsFailed.Load() > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrFailedSessions, stats.SessionsFailed.Load(), stats.SessionsStarted.Load())
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func runSession(ctx context.Context, c *client, config *Config, i int, poster []byte, stats *Stats, log logger.Logger) {
	stats.SessionsStarted.Add(1)
	session := uuid.NewString()
	organizer := "Smoke Organizer " + strconv.Itoa(i)
	offline := !config.Live

	fail := func(step string, err error) {
		stats.SessionsFailed.Add(1)
		log.Warn(ctx, "session failed",
			logger.String("session", session),
			logger.String("step", step),
			logger.Error(err),
		)
	}

	analysis, err := c.analyze(ctx, session, organizer, "Smoke test invitation #"+strconv.Itoa(i), offline, poster, config.Poster)
	if err != nil {
		stats.AnalysisErrors.Add(1)
		fail("analyze", err)
		return
	}
	stored, err := c.latest(ctx, session)
	if err != nil {
		fail("latest", err)
		return
	}
	post, err := c.post(ctx, session, "Met great people.", offline)
	if err != nil {
		stats.PostErrors.Add(1)
		fail("post", err)
		return
	}

	report := sessionReport{
		SessionID: session,
		Organizer: organizer,
		Analysis:  analysis,
		Stored:    stored,
		Post:      post,
	}
	if err := verifySession(report, config.Live); err != nil {
		fail("verify", err)
		return
	}

	stats.SessionsSucceeded.Add(1)
	if config.Verbose {
		log.Info(ctx, "session verified",
			logger.String("session", session),
			logger.Any("event", analysis["event_name"]),
		)
	}
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.SessionsStarted.Load()) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("started", int(stats.SessionsStarted.Load())),
		logger.Int("succeeded", int(stats.SessionsSucceeded.Load())),
		logger.Int("failed", int(stats.SessionsFailed.Load())),
		logger.Int("analysisErrors", int(stats.AnalysisErrors.Load())),
		logger.Int("postErrors", int(stats.PostErrors.Load())),
		logger.String("duration", stats.Duration.String()),
		logger.Any("sessionsPerSecond", perSecond),
	)
}
