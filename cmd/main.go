package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/rollcall/internal/adapters/http/api"
	"github.com/okian/rollcall/internal/adapters/http/swagger"
	"github.com/okian/rollcall/internal/adapters/source"
	app "github.com/okian/rollcall/internal/app"
	"github.com/okian/rollcall/internal/config"
	"github.com/okian/rollcall/internal/domain/ingest"
	"github.com/okian/rollcall/pkg/logger"
	"github.com/okian/rollcall/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Use stderr for startup errors since the logger may not be available yet
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	src, closer, err := buildSource(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build source: %w", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn(ctx, "closing source failed", logger.Error(err))
		}
	}()

	opts, err := serviceOptions(cfg, src, log)
	if err != nil {
		return err
	}
	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx, metrics.Default().RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newRouter registers docs and business routes behind the request id middleware.
func newRouter(ctx context.Context, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithLogger(log.Named("api"))).Register(ctx, mux)
	return api.RequestIDMiddleware(mux)
}

// buildSource returns the configured feed and a closer for any resources it holds.
func buildSource(ctx context.Context, cfg *config.Config, log logger.Logger) (source.Source, io.Closer, error) {
	opts := []source.Option{
		source.WithColumns(source.Columns{
			Date:  cfg.ColumnDate,
			Name:  cfg.ColumnName,
			Rank:  cfg.ColumnRank,
			Label: cfg.ColumnLabel,
		}),
		source.WithTimeout(cfg.SourceTimeout()),
		source.WithLogger(log.Named("source")),
	}

	switch cfg.SourceKind {
	case config.SourceCSV:
		return source.NewFileSource(cfg.SourcePath, opts...), nopCloser{}, nil
	case config.SourceHTTP:
		return source.NewHTTPSource(cfg.SourceURL, opts...), nopCloser{}, nil
	case config.SourceSQL:
		db, err := source.Connect(ctx, cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return source.NewSQLSource(db, cfg.SQLQuery, opts...), db, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", source.ErrUnknownKind, cfg.SourceKind)
	}
}

// serviceOptions translates configuration into service options.
func serviceOptions(cfg *config.Config, src source.Source, log logger.Logger) ([]app.Option, error) {
	policy, err := cfg.DedupePolicy()
	if err != nil {
		return nil, err
	}
	normalizer := ingest.New(
		ingest.WithDateLayouts(cfg.DateLayouts),
		ingest.WithFirstPlaceLabels(cfg.FirstPlaceLabels),
		ingest.WithPolicy(policy),
		ingest.WithLogger(log.Named("ingest")),
	)

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithSource(src),
		app.WithNormalizer(normalizer),
		app.WithRefreshInterval(cfg.RefreshInterval()),
		app.WithTopK(cfg.TopAttendanceK, cfg.TopPromptnessK),
	}
	start, ok, err := cfg.DefaultStart()
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, app.WithDefaultStart(start))
	}
	return opts, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, every time.Duration) {
	if every <= 0 || !metrics.Default().Enabled() {
		return
	}
	ticker := time.NewTicker(every)
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

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
