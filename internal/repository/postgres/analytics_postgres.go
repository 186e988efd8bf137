package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

type analyticsRepository struct{ pool *pgxpool.Pool }

// NewAnalyticsRepository builds the read side used by the question catalogue.
// Every query is read-only and safe to run against the pool directly.
func NewAnalyticsRepository(pool *pgxpool.Pool) repository.AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

// containsPattern escapes LIKE metacharacters so user text only ever matches literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

const matchSummarySelect = `SELECT date, team1, team2, winner, city, venue FROM matches`

func (r *analyticsRepository) RecentMatches(ctx context.Context, p repository.Page) ([]model.MatchSummary, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return r.matchSummaries(ctx,
		matchSummarySelect+` ORDER BY date DESC NULLS LAST, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *analyticsRepository) MatchesByCity(ctx context.Context, city string, p repository.Page) ([]model.MatchSummary, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return r.matchSummaries(ctx,
		matchSummarySelect+` WHERE city ILIKE $1 ORDER BY date DESC NULLS LAST, id DESC LIMIT $2 OFFSET $3`,
		containsPattern(city), limit, offset)
}

func (r *analyticsRepository) MatchesByVenue(ctx context.Context, venue string, p repository.Page) ([]model.MatchSummary, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return r.matchSummaries(ctx,
		matchSummarySelect+` WHERE venue ILIKE $1 ORDER BY date DESC NULLS LAST, id DESC LIMIT $2 OFFSET $3`,
		containsPattern(venue), limit, offset)
}

func (r *analyticsRepository) matchSummaries(ctx context.Context, sql string, args ...any) ([]model.MatchSummary, error) {
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.MatchSummary, 0, 32)
	for rows.Next() {
		var m model.MatchSummary
		if err := rows.Scan(&m.Date, &m.Team1, &m.Team2, &m.Winner, &m.City, &m.Venue); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, m)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *analyticsRepository) TeamsByWins(ctx context.Context, p repository.Page) ([]model.TeamStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return queryTeamStats(ctx, getQ(ctx, r.pool),
		teamStatsSelect+` ORDER BY matches_won DESC, team_name LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *analyticsRepository) TopRunScorers(ctx context.Context, p repository.Page) ([]model.PlayerStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return queryPlayerStats(ctx, getQ(ctx, r.pool),
		playerStatsSelect+` WHERE total_runs > 0 ORDER BY total_runs DESC, player_name LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *analyticsRepository) TopWicketTakers(ctx context.Context, p repository.Page) ([]model.PlayerStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return queryPlayerStats(ctx, getQ(ctx, r.pool),
		playerStatsSelect+` WHERE wickets_taken > 0 ORDER BY wickets_taken DESC, player_name LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *analyticsRepository) BattingByName(ctx context.Context, name string, p repository.Page) ([]model.PlayerStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return queryPlayerStats(ctx, getQ(ctx, r.pool),
		playerStatsSelect+` WHERE player_name ILIKE $1 AND total_runs > 0
		ORDER BY total_runs DESC, player_name LIMIT $2 OFFSET $3`,
		containsPattern(name), limit, offset)
}

func (r *analyticsRepository) BowlingByName(ctx context.Context, name string, p repository.Page) ([]model.PlayerStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return queryPlayerStats(ctx, getQ(ctx, r.pool),
		playerStatsSelect+` WHERE player_name ILIKE $1 AND wickets_taken > 0
		ORDER BY wickets_taken DESC, player_name LIMIT $2 OFFSET $3`,
		containsPattern(name), limit, offset)
}

func (r *analyticsRepository) Centuries(ctx context.Context, p repository.Page) ([]model.PlayerStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return queryPlayerStats(ctx, getQ(ctx, r.pool),
		playerStatsSelect+` WHERE highest_score >= 100 ORDER BY highest_score DESC, player_name LIMIT $1 OFFSET $2`,
		limit, offset)
}

const inningsScoreSelect = `SELECT i.total_runs, i.team, m.venue, m.city, m.date, m.team1, m.team2, m.winner
	FROM innings i
	JOIN matches m ON i.match_id = m.id`

func (r *analyticsRepository) HighestTotals(ctx context.Context, p repository.Page) ([]model.InningsScore, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return r.inningsScores(ctx,
		inningsScoreSelect+` ORDER BY i.total_runs DESC, i.id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *analyticsRepository) LowestTotals(ctx context.Context, p repository.Page) ([]model.InningsScore, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	return r.inningsScores(ctx,
		inningsScoreSelect+` WHERE i.total_runs > 0 ORDER BY i.total_runs ASC, i.id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *analyticsRepository) inningsScores(ctx context.Context, sql string, args ...any) ([]model.InningsScore, error) {
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.InningsScore, 0, 16)
	for rows.Next() {
		var s model.InningsScore
		if err := rows.Scan(&s.TotalRuns, &s.Team, &s.Venue, &s.City, &s.Date, &s.Team1, &s.Team2, &s.Winner); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, s)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *analyticsRepository) AverageFirstInnings(ctx context.Context) (model.ScoreAverage, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.ScoreAverage{}, err
	}
	var out model.ScoreAverage
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(AVG(total_runs), 0)::float8, COUNT(*)
		 FROM innings
		 WHERE innings_number = 1 AND total_runs > 0`,
	).Scan(&out.Average, &out.Innings)
	if err != nil {
		return model.ScoreAverage{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *analyticsRepository) VenueScoring(ctx context.Context, minInnings int, p repository.Page) ([]model.VenueScoring, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT m.venue, AVG(i.total_runs)::float8 AS avg_score, MAX(i.total_runs), COUNT(i.id)
		 FROM matches m
		 JOIN innings i ON m.id = i.match_id
		 WHERE m.venue <> ''
		 GROUP BY m.venue
		 HAVING COUNT(i.id) >= $1
		 ORDER BY avg_score DESC, m.venue
		 LIMIT $2 OFFSET $3`,
		minInnings, limit, offset)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.VenueScoring, 0, 16)
	for rows.Next() {
		var v model.VenueScoring
		if err := rows.Scan(&v.Venue, &v.AverageScore, &v.HighestScore, &v.Innings); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, v)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *analyticsRepository) SuccessfulChases(ctx context.Context, p repository.Page) ([]model.Chase, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT m.date, i.total_runs, i.team, m.team1, m.team2, m.winner, m.venue
		 FROM innings i
		 JOIN matches m ON i.match_id = m.id
		 WHERE i.innings_number = 2
		   AND i.team = m.winner
		   AND i.target IS NOT NULL
		 ORDER BY i.total_runs DESC, i.id
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Chase, 0, 16)
	for rows.Next() {
		var c model.Chase
		if err := rows.Scan(&c.Date, &c.TotalRuns, &c.ChasingTeam, &c.Team1, &c.Team2, &c.Winner, &c.Venue); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, c)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *analyticsRepository) TeamScoring(ctx context.Context, minInnings int, p repository.Page) ([]model.TeamScoring, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit, offset := pageArgs(p)
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT i.team, AVG(i.total_runs)::float8 AS avg_total, COUNT(*)
		 FROM innings i
		 JOIN matches m ON i.match_id = m.id
		 GROUP BY i.team
		 HAVING COUNT(*) >= $1
		 ORDER BY avg_total DESC, i.team
		 LIMIT $2 OFFSET $3`,
		minInnings, limit, offset)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.TeamScoring, 0, 16)
	for rows.Next() {
		var t model.TeamScoring
		if err := rows.Scan(&t.Team, &t.AverageTotal, &t.Innings); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, t)
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.AnalyticsRepository = (*analyticsRepository)(nil)
