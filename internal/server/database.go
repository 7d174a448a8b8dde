package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
	repo "github.com/joseph-ayodele/papers-extractor/internal/repository"
)

// ConnectDB opens the staging pool from the loaded configuration and pings it once.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", common.ErrDatabase, err)
	}
	if err := PingDB(ctx, pool, logger, 5*time.Second); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, timeout time.Duration) error {
	if err := repo.HealthCheck(ctx, pool, timeout, logger); err != nil {
		return fmt.Errorf("%w: ping: %w", common.ErrDatabase, err)
	}
	return nil
}

// CloseDB closes the database connections gracefully
func CloseDB(pool *pgxpool.Pool, logger *slog.Logger) {
	repo.Close(pool, logger)
}
