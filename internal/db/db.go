package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	HealthCheckPeriod time.Duration
	PingTimeout       time.Duration
}

// Connect opens a bounded pool. Connections are pinged before they are handed
// out; a connection failing the ping is discarded and another one is tried.
func Connect(ctx context.Context, databaseURL string, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		cfg.MinConns = pc.MinConns
	}
	if pc.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = pc.HealthCheckPeriod
	}
	pingTimeout := pc.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = time.Second
	}
	cfg.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return conn.Ping(pingCtx) == nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies the goose migrations in dir.
func Migrate(databaseURL, dir string) error {
	return withSQLDB(databaseURL, func(sqlDB *sql.DB) error {
		if err := goose.Up(sqlDB, dir); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		return nil
	})
}

// Rebuild rolls every migration back and applies them again. Used by
// integration tests and `migrate -reset` against disposable databases.
func Rebuild(databaseURL, dir string) error {
	return withSQLDB(databaseURL, func(sqlDB *sql.DB) error {
		if err := goose.Reset(sqlDB, dir); err != nil {
			return fmt.Errorf("goose reset: %w", err)
		}
		if err := goose.Up(sqlDB, dir); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		return nil
	})
}

func withSQLDB(databaseURL string, fn func(*sql.DB) error) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlDB.Close()
	return fn(sqlDB)
}
