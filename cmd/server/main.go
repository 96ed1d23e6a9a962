package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/sheetqa/internal/api"
	"github.com/Harshitk-cp/sheetqa/internal/config"
	"github.com/Harshitk-cp/sheetqa/internal/source"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if dbURL := config.DatabaseURL(); dbURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		logger.Info("connected to database")
	} else if config.KnowledgeSource() == source.KindPostgres {
		logger.Fatal("DATABASE_URL is required for the postgres knowledge source")
	}

	app, err := api.NewApp(ctx, pool, logger)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}

	// Nothing can be answered without an initial snapshot.
	if _, err := app.Knowledge.Refresh(ctx); err != nil {
		logger.Fatal("initial knowledge base load failed", zap.Error(err))
	}

	app.Refresher.Start()

	if csvSrc, ok := app.Source.(*source.CSVSource); ok && config.WatchKnowledge() {
		go func() {
			if err := source.Watch(ctx, csvSrc.Path(), logger, app.Refresher.Trigger); err != nil {
				logger.Error("knowledge file watcher failed", zap.Error(err))
			}
		}()
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	app.Refresher.Stop()
	app.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
