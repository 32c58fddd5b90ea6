package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trackflow-app/trackflow/internal/api"
	"github.com/trackflow-app/trackflow/internal/buildconfig"
	"github.com/trackflow-app/trackflow/internal/config"
	"github.com/trackflow-app/trackflow/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownGrace = 10 * time.Second

func main() {
	// Config errors are reported by the fallback logger; LOG_LEVEL is
	// applied once the environment is loaded.
	logger, _ := zap.NewProduction()
	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	logger = newLogger(logger)
	defer func() { _ = logger.Sync() }()

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	if err := store.Migrate(ctx, pool, config.MigrationsPath(), logger); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	app, err := api.NewApp(pool, logger)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}
	app.InviteExpirer.Start()
	defer app.InviteExpirer.Stop()

	srv := &http.Server{
		Addr:              config.ServerAddr(),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("trackflow api listening",
			zap.String("addr", srv.Addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func newLogger(fallback *zap.Logger) *zap.Logger {
	lvl, err := zapcore.ParseLevel(config.LogLevel())
	if err != nil {
		fallback.Warn("invalid LOG_LEVEL, using info", zap.String("level", config.LogLevel()))
		return fallback
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return fallback
	}
	return logger.With(zap.String("service", "trackflow-api"))
}
