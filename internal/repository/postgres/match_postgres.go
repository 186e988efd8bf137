package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

func (r *matchRepository) ExistsByExternalID(ctx context.Context, matchID string) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var exists bool
	exec := getQ(ctx, r.pool)
	err := exec.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM matches WHERE match_id = $1)`, matchID).Scan(&exists)
	if err != nil {
		return false, repository.MapPgError(err)
	}
	return exists, nil
}

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO matches (
			match_id, city, venue, date, season, match_type, event_name, match_number,
			gender, overs, balls_per_over, winner, result, win_by_runs, win_by_wickets,
			win_method, toss_winner, toss_decision, player_of_match, umpires,
			match_referee, tv_umpire, reserve_umpire, team1, team2, raw_data
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		RETURNING id`,
		m.MatchID, m.City, m.Venue, m.Date, m.Season, m.MatchType, m.EventName, m.MatchNumber,
		m.Gender, m.Overs, m.BallsPerOver, m.Winner, m.Result, m.WinByRuns, m.WinByWickets,
		m.WinMethod, m.TossWinner, m.TossDecision, m.PlayerOfMatch, nonNil(m.Umpires),
		m.MatchReferee, m.TVUmpire, m.ReserveUmpire, m.Team1, m.Team2, rawJSON(m.RawData),
	)
	out := m
	if err := row.Scan(&out.ID); err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) ListOutcomes(ctx context.Context) ([]model.MatchOutcome, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id, team1, team2, winner, result FROM matches ORDER BY id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.MatchOutcome, 0, 64)
	for rows.Next() {
		var o model.MatchOutcome
		if err := rows.Scan(&o.ID, &o.Team1, &o.Team2, &o.Winner, &o.Result); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, o)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *matchRepository) Count(ctx context.Context) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var n int
	exec := getQ(ctx, r.pool)
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

var _ repository.MatchRepository = (*matchRepository)(nil)
