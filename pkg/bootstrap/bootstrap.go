// Package bootstrap builds the process-wide logger and database pool.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/abgdnv/shopadmin/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewLogger returns a JSON logger on stdout. Debug level also records the
// source position.
func NewLogger(level string) *slog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl := toLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: lvl <= slog.LevelDebug, Level: lvl})
	return slog.New(logger.NewContextHandler(handler))
}

// toLevel parses a slog level name in any case. Anything unparsable is info.
func toLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewDbPool connects to PostgreSQL and pings it, so a bad URL or an
// unreachable server fails at startup. connectTimeout bounds both steps.
func NewDbPool(ctx context.Context, url string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
