package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

var playerStatsColumns = []string{
	"player_name", "matches_batted", "total_runs", "highest_score", "centuries", "fifties",
	"sixes", "fours", "balls_faced", "batting_average", "strike_rate", "matches_bowled",
	"wickets_taken", "runs_conceded", "overs_bowled", "bowling_average", "economy_rate", "best_figures",
}

var teamStatsColumns = []string{
	"team_name", "matches_played", "matches_won", "matches_lost", "matches_no_result",
	"total_runs_scored", "total_runs_conceded", "highest_score", "lowest_score", "win_percentage",
}

const (
	playerStatsSelect = `SELECT player_name, matches_batted, total_runs, highest_score, centuries, fifties,
		sixes, fours, balls_faced, batting_average, strike_rate, matches_bowled,
		wickets_taken, runs_conceded, overs_bowled, bowling_average, economy_rate, best_figures
		FROM player_stats`
	teamStatsSelect = `SELECT team_name, matches_played, matches_won, matches_lost, matches_no_result,
		total_runs_scored, total_runs_conceded, highest_score, lowest_score, win_percentage
		FROM team_stats`
)

type statsRepository struct{ pool *pgxpool.Pool }

func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

// ReplacePlayerStats deletes every row and copies the new snapshot in. Run it inside
// WithinTx, otherwise readers can observe the empty table between the two statements.
func (r *statsRepository) ReplacePlayerStats(ctx context.Context, rows []model.PlayerStats) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	if _, err := exec.Exec(ctx, `DELETE FROM player_stats`); err != nil {
		return repository.MapPgError(err)
	}
	_, err := exec.CopyFrom(ctx, pgx.Identifier{"player_stats"}, playerStatsColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			s := rows[i]
			return []any{
				s.PlayerName, s.MatchesBatted, s.TotalRuns, s.HighestScore, s.Centuries, s.Fifties,
				s.Sixes, s.Fours, s.BallsFaced, s.BattingAverage, s.StrikeRate, s.MatchesBowled,
				s.WicketsTaken, s.RunsConceded, s.OversBowled, s.BowlingAverage, s.EconomyRate, s.BestFigures,
			}, nil
		}),
	)
	return repository.MapPgError(err)
}

func (r *statsRepository) ReplaceTeamStats(ctx context.Context, rows []model.TeamStats) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	if _, err := exec.Exec(ctx, `DELETE FROM team_stats`); err != nil {
		return repository.MapPgError(err)
	}
	_, err := exec.CopyFrom(ctx, pgx.Identifier{"team_stats"}, teamStatsColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			s := rows[i]
			return []any{
				s.TeamName, s.MatchesPlayed, s.MatchesWon, s.MatchesLost, s.MatchesNoResult,
				s.TotalRunsScored, s.TotalRunsConceded, s.HighestScore, s.LowestScore, s.WinPercentage,
			}, nil
		}),
	)
	return repository.MapPgError(err)
}

func (r *statsRepository) ListPlayerStats(ctx context.Context) ([]model.PlayerStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	return queryPlayerStats(ctx, getQ(ctx, r.pool), playerStatsSelect+` ORDER BY player_name`)
}

func (r *statsRepository) ListTeamStats(ctx context.Context) ([]model.TeamStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	return queryTeamStats(ctx, getQ(ctx, r.pool), teamStatsSelect+` ORDER BY matches_won DESC, team_name`)
}

func queryPlayerStats(ctx context.Context, exec q, sql string, args ...any) ([]model.PlayerStats, error) {
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.PlayerStats, 0, 32)
	for rows.Next() {
		var s model.PlayerStats
		if err := rows.Scan(
			&s.PlayerName, &s.MatchesBatted, &s.TotalRuns, &s.HighestScore, &s.Centuries, &s.Fifties,
			&s.Sixes, &s.Fours, &s.BallsFaced, &s.BattingAverage, &s.StrikeRate, &s.MatchesBowled,
			&s.WicketsTaken, &s.RunsConceded, &s.OversBowled, &s.BowlingAverage, &s.EconomyRate, &s.BestFigures,
		); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, s)
	}
	return res, repository.MapPgError(rows.Err())
}

func queryTeamStats(ctx context.Context, exec q, sql string, args ...any) ([]model.TeamStats, error) {
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.TeamStats, 0, 16)
	for rows.Next() {
		var s model.TeamStats
		if err := rows.Scan(
			&s.TeamName, &s.MatchesPlayed, &s.MatchesWon, &s.MatchesLost, &s.MatchesNoResult,
			&s.TotalRunsScored, &s.TotalRunsConceded, &s.HighestScore, &s.LowestScore, &s.WinPercentage,
		); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, s)
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.StatsRepository = (*statsRepository)(nil)
