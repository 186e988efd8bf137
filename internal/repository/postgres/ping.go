package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

// ErrSchemaMissing means the database answers but migrations have not run.
var ErrSchemaMissing = errors.New("schema not migrated")

type pinger struct{ pool *pgxpool.Pool }

// NewPinger reports ready once the pool answers and the matches table exists.
func NewPinger(pool *pgxpool.Pool) repository.Pinger { return &pinger{pool: pool} }

func (p *pinger) Ping(ctx context.Context) error {
	if err := ensurePool(p.pool); err != nil {
		return err
	}
	var migrated bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regclass('public.matches') IS NOT NULL`).Scan(&migrated); err != nil {
		return repository.MapPgError(err)
	}
	if !migrated {
		return ErrSchemaMissing
	}
	return nil
}
