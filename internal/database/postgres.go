package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/config"
	"github.com/rs/zerolog"
)

const (
	pgConnLifetime     = time.Hour
	pgConnIdleTime     = 15 * time.Minute
	pgHealthCheck      = time.Minute
	pgConnectTimeout   = 10 * time.Second
	pgStatementTimeout = "15000" // ms
)

// NewPostgresPool creates and validates a PostgreSQL connection pool.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.MinConns = min(2, cfg.MaxDBConns)
	poolCfg.MaxConnLifetime = pgConnLifetime
	poolCfg.MaxConnIdleTime = pgConnIdleTime
	poolCfg.HealthCheckPeriod = pgHealthCheck
	poolCfg.ConnConfig.ConnectTimeout = pgConnectTimeout
	// Leaderboard aggregation is the heaviest query; keep a runaway one from
	// pinning a connection.
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = pgStatementTimeout
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Int32("max_conns", poolCfg.MaxConns).
		Int32("min_conns", poolCfg.MinConns).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("PostgreSQL connected")

	return pool, nil
}
