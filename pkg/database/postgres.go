package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres wraps a pgx connection pool for one database.
type Postgres struct {
	Pool *pgxpool.Pool
}

type Option func(*pgxpool.Config)

// MaxPoolSize caps the number of connections in the pool.
func MaxPoolSize(size int32) Option {
	return func(cfg *pgxpool.Config) {
		cfg.MaxConns = size
	}
}

// New opens a connection pool for the given URL and verifies it with a ping.
func New(ctx context.Context, databaseURL string, opts ...Option) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() {
	p.Pool.Close()
}
