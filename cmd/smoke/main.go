package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/techmentor/internal/smoke"
	"github.com/okian/techmentor/pkg/logger"
)

// Default configuration constants.
const (
	defaultSessions = 50
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 60 * time.Second
	defaultDeadline = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8501", "Base URL of the service")
		sessions  = flag.Int("sessions", defaultSessions, "Number of sessions to drive")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		live      = flag.Bool("live", false, "Call the model instead of demo mode (costs quota)")
		poster    = flag.String("poster", "", "Poster file sent with every analysis")
		logFormat = flag.String("log-format", "text", "Log format: text or json")
		verbose   = flag.Bool("verbose", false, "Log every verified session")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDeadline)
	defer cancel()

	_, err := smoke.Run(ctx, &smoke.Config{
		BaseURL:  *baseURL,
		Sessions: *sessions,
		Workers:  *workers,
		Timeout:  *timeout,
		Live:     *live,
		Poster:   *poster,
		Verbose:  *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
