package repository

import (
	"context"

	"github.com/maxviazov/cricket-stats-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// A WithinTx call made inside another one runs as a savepoint: its failure rolls back
// only its own writes and leaves the outer transaction usable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// MatchRepository persists matches. Matches are never updated after creation.
type MatchRepository interface {
	ExistsByExternalID(ctx context.Context, matchID string) (bool, error)
	Create(ctx context.Context, m model.Match) (model.Match, error)
	// ListOutcomes returns every match reduced to the fields team aggregation needs.
	ListOutcomes(ctx context.Context) ([]model.MatchOutcome, error)
	Count(ctx context.Context) (int, error)
}

// InningsRepository persists innings rows.
type InningsRepository interface {
	Create(ctx context.Context, in model.Innings) (model.Innings, error)
	ListTotals(ctx context.Context) ([]model.InningsTotal, error)
}

// DeliveryRepository persists ball-level events.
type DeliveryRepository interface {
	CreateBatch(ctx context.Context, ds []model.Delivery) (int64, error)
	// ForEach streams every delivery ordered by (match, innings, over, ball).
	// Iteration stops at the first error returned by fn.
	ForEach(ctx context.Context, fn func(d model.Delivery) error) error
}

// TeamRepository persists teams, deduplicated by name.
type TeamRepository interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, t model.Team) (model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
}

// PlayerRepository persists players, deduplicated by registry id.
type PlayerRepository interface {
	ExistsByExternalID(ctx context.Context, cricsheetID string) (bool, error)
	Create(ctx context.Context, p model.Player) (model.Player, error)
}

// StatsRepository owns the derived projections. Replace* wipe the table and
// write rows in one statement pair; callers wrap both in one transaction.
type StatsRepository interface {
	ReplacePlayerStats(ctx context.Context, rows []model.PlayerStats) error
	ReplaceTeamStats(ctx context.Context, rows []model.TeamStats) error
	ListPlayerStats(ctx context.Context) ([]model.PlayerStats, error)
	// ListTeamStats returns all teams ranked by wins descending.
	ListTeamStats(ctx context.Context) ([]model.TeamStats, error)
}

// AnalyticsRepository holds the read-only queries behind the question catalogue.
// Every method honors p.Limit; ordering is part of each method's contract.
type AnalyticsRepository interface {
	// RecentMatches orders newest first.
	RecentMatches(ctx context.Context, p Page) ([]model.MatchSummary, error)
	// TeamsByWins orders by matches won descending.
	TeamsByWins(ctx context.Context, p Page) ([]model.TeamStats, error)
	// TopRunScorers returns players with runs > 0, most runs first.
	TopRunScorers(ctx context.Context, p Page) ([]model.PlayerStats, error)
	// TopWicketTakers returns players with wickets > 0, most wickets first.
	TopWicketTakers(ctx context.Context, p Page) ([]model.PlayerStats, error)
	// BattingByName matches name as a case-insensitive substring among players with runs > 0.
	BattingByName(ctx context.Context, name string, p Page) ([]model.PlayerStats, error)
	// BowlingByName matches name as a case-insensitive substring among players with wickets > 0.
	BowlingByName(ctx context.Context, name string, p Page) ([]model.PlayerStats, error)
	HighestTotals(ctx context.Context, p Page) ([]model.InningsScore, error)
	// LowestTotals skips innings with zero runs.
	LowestTotals(ctx context.Context, p Page) ([]model.InningsScore, error)
	MatchesByCity(ctx context.Context, city string, p Page) ([]model.MatchSummary, error)
	MatchesByVenue(ctx context.Context, venue string, p Page) ([]model.MatchSummary, error)
	// AverageFirstInnings averages first innings totals above zero.
	AverageFirstInnings(ctx context.Context) (model.ScoreAverage, error)
	VenueScoring(ctx context.Context, minInnings int, p Page) ([]model.VenueScoring, error)
	// Centuries returns players whose recorded highest score is at least 100.
	Centuries(ctx context.Context, p Page) ([]model.PlayerStats, error)
	// SuccessfulChases returns second innings with a target won by the batting side.
	SuccessfulChases(ctx context.Context, p Page) ([]model.Chase, error)
	TeamScoring(ctx context.Context, minInnings int, p Page) ([]model.TeamScoring, error)
}
