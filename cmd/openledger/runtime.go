package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openledger/openledger/internal/app"
	"github.com/openledger/openledger/internal/platform/db"
)

// runtime bundles the shared dependencies CLI commands need.
type runtime struct {
	cfg  *app.Config
	pool *pgxpool.Pool
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, pool: pool}, nil
}

func (r *runtime) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
