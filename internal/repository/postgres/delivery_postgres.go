package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

var deliveryColumns = []string{
	"match_id", "innings", "over_number", "ball_number", "batter", "non_striker", "bowler",
	"runs_batter", "runs_extras", "runs_total", "extras_type", "wicket_taken",
	"wicket_type", "wicket_player_out", "wicket_fielders", "is_super_over",
}

type deliveryRepository struct{ pool *pgxpool.Pool }

func NewDeliveryRepository(pool *pgxpool.Pool) repository.DeliveryRepository {
	return &deliveryRepository{pool: pool}
}

// CreateBatch bulk-loads deliveries with COPY. A single bad row fails the whole batch.
func (r *deliveryRepository) CreateBatch(ctx context.Context, ds []model.Delivery) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	if len(ds) == 0 {
		return 0, nil
	}
	exec := getQ(ctx, r.pool)
	n, err := exec.CopyFrom(ctx, pgx.Identifier{"deliveries"}, deliveryColumns,
		pgx.CopyFromSlice(len(ds), func(i int) ([]any, error) {
			d := ds[i]
			var extras any
			if d.ExtrasType != "" {
				extras = d.ExtrasType
			}
			return []any{
				d.MatchID, d.Innings, d.Over, d.Ball, d.Batter, d.NonStriker, d.Bowler,
				d.RunsBatter, d.RunsExtras, d.RunsTotal, extras, d.WicketTaken,
				d.WicketType, d.WicketPlayerOut, nonNil(d.WicketFielders), d.IsSuperOver,
			}, nil
		}),
	)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

func (r *deliveryRepository) ForEach(ctx context.Context, fn func(d model.Delivery) error) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, match_id, innings, over_number, ball_number, batter, non_striker, bowler,
		        runs_batter, runs_extras, runs_total, COALESCE(extras_type, ''), wicket_taken,
		        wicket_type, wicket_player_out, wicket_fielders, is_super_over
		 FROM deliveries
		 ORDER BY match_id, innings, over_number, ball_number, id`)
	if err != nil {
		return repository.MapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var d model.Delivery
		if err := rows.Scan(
			&d.ID, &d.MatchID, &d.Innings, &d.Over, &d.Ball, &d.Batter, &d.NonStriker, &d.Bowler,
			&d.RunsBatter, &d.RunsExtras, &d.RunsTotal, &d.ExtrasType, &d.WicketTaken,
			&d.WicketType, &d.WicketPlayerOut, &d.WicketFielders, &d.IsSuperOver,
		); err != nil {
			return repository.MapPgError(err)
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	return repository.MapPgError(rows.Err())
}

var _ repository.DeliveryRepository = (*deliveryRepository)(nil)
