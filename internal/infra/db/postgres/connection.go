package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// connectWindow bounds how long startup keeps retrying an unreachable database.
const connectWindow = 30 * time.Second

// NewPgxPool connects and pings, retrying with exponential backoff until
// connectWindow elapses. A malformed URL fails immediately.
func NewPgxPool(ctx context.Context, dsn string, maxConns int32, logger *zerolog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	connect := func() (*pgxpool.Pool, error) {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		pool, err := pgxpool.ConnectConfig(cctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(cctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}

	pool, err := backoff.Retry(ctx, connect,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(connectWindow),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn().Err(err).Dur("retry_in", next).Msg("postgres not ready")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
