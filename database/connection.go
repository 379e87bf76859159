package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// DB is the platform's pgx connection pool. Every session runs in UTC so
// the day boundaries used by deposit limits and schedules agree with Postgres.
type DB struct {
	*pgxpool.Pool
}

// PoolConfig sizes the connection pool. Zero values keep pgx's defaults.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
}

// apply copies the non-zero settings onto a parsed pgx config
func (p PoolConfig) apply(cfg *pgxpool.Config) error {
	if p.MinConns < 0 || p.MaxConns < 0 {
		return fmt.Errorf("pool sizes must not be negative (min %d, max %d)", p.MinConns, p.MaxConns)
	}
	if p.MaxConns > 0 {
		if p.MinConns > p.MaxConns {
			return fmt.Errorf("min connections %d exceed max connections %d", p.MinConns, p.MaxConns)
		}
		cfg.MaxConns = p.MaxConns
	}
	if p.MinConns > 0 {
		cfg.MinConns = p.MinConns
	}
	if p.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = p.MaxConnIdleTime
	}
	if p.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = p.MaxConnLifetime
	}
	return nil
}

// ParsePoolConfig builds the pgx pool settings for databaseURL
func ParsePoolConfig(databaseURL string, pool PoolConfig) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"

	if err := pool.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConnection opens the pool and checks that the database answers
func NewConnection(ctx context.Context, databaseURL string, pool PoolConfig) (*DB, error) {
	cfg, err := ParsePoolConfig(databaseURL, pool)
	if err != nil {
		return nil, err
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(log.Fields{
		"max_conns": cfg.MaxConns,
		"min_conns": cfg.MinConns,
	}).Debug("Database pool ready")
	return &DB{Pool: p}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
