package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

type inningsRepository struct{ pool *pgxpool.Pool }

func NewInningsRepository(pool *pgxpool.Pool) repository.InningsRepository {
	return &inningsRepository{pool: pool}
}

func (r *inningsRepository) Create(ctx context.Context, in model.Innings) (model.Innings, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Innings{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO innings (
			match_id, innings_number, team, total_runs, total_wickets, total_overs,
			run_rate, powerplay_runs, powerplay_wickets, target
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`,
		in.MatchID, in.Number, in.Team, in.TotalRuns, in.TotalWickets, in.TotalOvers,
		in.RunRate, in.PowerplayRuns, in.PowerplayWickets, in.Target,
	)
	out := in
	if err := row.Scan(&out.ID); err != nil {
		return model.Innings{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *inningsRepository) ListTotals(ctx context.Context) ([]model.InningsTotal, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT match_id, innings_number, team, total_runs
		 FROM innings
		 ORDER BY match_id, innings_number`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.InningsTotal, 0, 128)
	for rows.Next() {
		var it model.InningsTotal
		if err := rows.Scan(&it.MatchID, &it.Number, &it.Team, &it.TotalRuns); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.InningsRepository = (*inningsRepository)(nil)
