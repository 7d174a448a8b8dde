package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/papers-extractor/internal/app"
	"github.com/joseph-ayodele/papers-extractor/internal/async"
	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/ingest"
	repo "github.com/joseph-ayodele/papers-extractor/internal/repository"
	"github.com/joseph-ayodele/papers-extractor/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := app.NewJSONLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.Ingest.WatchDir == "" {
		logger.Error("missing WATCH_DIR environment variable")
		os.Exit(2)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	proc, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.HasPrefix(addr, ":") && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer server.CloseDB(pool, logger)

	store, err := repo.OpenLocalStore(ctx, cfg.SQLite.Path, logger)
	if err != nil {
		logger.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	staging := repo.NewStagingRepository(pool, logger)
	queue := async.NewProcessorQueue(proc,
		async.FanOut{
			app.StoreSink(store, logger),
			app.StagingSink(staging, cfg.Ingest.Source, logger),
		},
		logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)

	// gRPC health
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	hs := server.NewHealthServer(logger)
	go hs.Monitor(ctx, "database", 30*time.Second, func(ctx context.Context) error {
		return pingPool(ctx, pool, logger)
	})
	go func() {
		if err := hs.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Ingest.WatchDir},
		InitialScan: true,
		Debounce:    cfg.Ingest.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "dir", cfg.Ingest.WatchDir, "error", err)
		os.Exit(1)
	}

	logger.Info("papersd running", "addr", addr, "watch_dir", cfg.Ingest.WatchDir)
	for events != nil || errs != nil {
		select {
		case p, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := queue.Enqueue(ctx, async.Job{Path: p, Source: p}); err != nil {
				logger.Warn("enqueue failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher reported error", "error", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.ProcessTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	hs.Stop()
}

func pingPool(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	return server.PingDB(ctx, pool, logger, 5*time.Second)
}
