package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/techmentor/internal/adapters/completion"
	"github.com/okian/techmentor/internal/adapters/http/api"
	"github.com/okian/techmentor/internal/adapters/http/site"
	"github.com/okian/techmentor/internal/adapters/http/swagger"
	"github.com/okian/techmentor/internal/adapters/repository"
	app "github.com/okian/techmentor/internal/app"
	"github.com/okian/techmentor/internal/config"
	"github.com/okian/techmentor/internal/domain/memo"
	"github.com/okian/techmentor/pkg/logger"
	"github.com/okian/techmentor/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants. Writes allow for a slow model response.
const (
	readTimeout               = 30 * time.Second
	writeTimeout              = 120 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
	maxSessions               = 10_000
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Text logging until the configured format is known.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, svc, err := newHandler(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build handlers", logger.Error(err))
		return
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("model", cfg.Model),
			logger.Bool("offline", cfg.Offline),
			logger.Bool("credential", cfg.HasCredential()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newHandler builds the service and registers every route on a fresh mux.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, *app.Service, error) {
	completer, err := completion.NewGemini(ctx,
		completion.WithAPIKey(cfg.GeminiAPIKey),
		completion.WithModel(cfg.Model),
		completion.WithLogger(log),
	)
	if err != nil {
		return nil, nil, err
	}

	svc := app.New(ctx,
		app.WithLogger(log),
		app.WithCompleter(completer),
		app.WithStore(repository.NewMemoryStore(ctx, repository.WithMaxSessions(maxSessions))),
		app.WithMemo(memo.NewInMemoryCache(memo.WithMaxSize(cfg.CacheSize))),
		app.WithOffline(cfg.Offline),
	)

	mux := http.NewServeMux()

	// API docs at /api-docs and /openapi.yaml
	swagger.Register(ctx, mux)

	// JSON API, health and stats.
	apiServer := api.NewServer(svc, svc,
		api.WithSessionCookie(cfg.SessionCookie),
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)
	apiServer.Register(ctx, mux)

	// HTML page at /.
	page, err := site.NewHandler(svc,
		site.WithSessionCookie(cfg.SessionCookie),
		site.WithMaxUploadBytes(cfg.MaxUploadBytes),
		site.WithLogger(log),
	)
	if err != nil {
		return nil, nil, err
	}
	page.Register(ctx, mux)

	return mux, svc, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes gauges derived from service state.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	// GetStats refreshes the stored analyses gauge.
	stats := svc.GetStats()
	if stored, ok := stats["storedAnalyses"].(int); ok {
		metrics.UpdateStoredAnalyses(stored)
	}
}
