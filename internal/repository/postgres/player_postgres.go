package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

type playerRepository struct{ pool *pgxpool.Pool }

func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

func (r *playerRepository) ExistsByExternalID(ctx context.Context, cricsheetID string) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var exists bool
	exec := getQ(ctx, r.pool)
	err := exec.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM players WHERE cricsheet_id = $1)`, cricsheetID).Scan(&exists)
	if err != nil {
		return false, repository.MapPgError(err)
	}
	return exists, nil
}

func (r *playerRepository) Create(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO players (name, cricsheet_id) VALUES ($1, $2)
		 RETURNING id, name, cricsheet_id`,
		p.Name, p.CricsheetID,
	)
	var out model.Player
	if err := row.Scan(&out.ID, &out.Name, &out.CricsheetID); err != nil {
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
