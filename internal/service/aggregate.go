package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

// AggregationPolicy names the known simplifications of the stats engine so they
// can be asserted on and switched off deliberately.
type AggregationPolicy struct {
	// CreditAllWicketsToBowler counts every dismissal for the bowler, run outs included.
	CreditAllWicketsToBowler bool
	// LostIncludesNoDecision makes matches_lost = played - won, folding ties and
	// no-results into losses.
	LostIncludesNoDecision bool
	// ComputeHighestScore derives highest_score, centuries and fifties from
	// per-innings totals. When off they stay 0.
	ComputeHighestScore bool
}

// DefaultAggregationPolicy keeps the documented behavior: every wicket to the
// bowler, lost means not won, highest score left at 0.
func DefaultAggregationPolicy() AggregationPolicy {
	return AggregationPolicy{
		CreditAllWicketsToBowler: true,
		LostIncludesNoDecision:   true,
		ComputeHighestScore:      false,
	}
}

// Dismissals a bowler is not credited with when CreditAllWicketsToBowler is off.
var nonBowlerDismissals = map[string]struct{}{
	"run out":               {},
	"retired hurt":          {},
	"retired out":           {},
	"retired not out":       {},
	"obstructing the field": {},
	"timed out":             {},
}

// regularInnings excludes super overs from team scoring columns.
const regularInnings = 2

// AggregateRepos groups the stores the engine reads from and writes to.
type AggregateRepos struct {
	Matches    repository.MatchRepository
	Innings    repository.InningsRepository
	Deliveries repository.DeliveryRepository
	Teams      repository.TeamRepository
	Stats      repository.StatsRepository
}

type statsService struct {
	repos  AggregateRepos
	tx     repository.TxManager
	policy AggregationPolicy
	lock   *sync.RWMutex
	log    zerolog.Logger
}

// NewStatsService builds the aggregation engine. lock is shared with the query
// service so in-process readers wait for a running recompute; nil means no sharing.
func NewStatsService(repos AggregateRepos, tx repository.TxManager, policy AggregationPolicy, lock *sync.RWMutex, logger zerolog.Logger) StatsService {
	if lock == nil {
		lock = &sync.RWMutex{}
	}
	l := logger.With().Str("module", "service").Str("component", "stats").Logger()
	return &statsService{repos: repos, tx: tx, policy: policy, lock: lock, log: l}
}

func (s *statsService) Recompute(ctx context.Context) (RecomputeResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	start := time.Now()
	var res RecomputeResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		teams, err := s.repos.Teams.List(ctx)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		outcomes, err := s.repos.Matches.ListOutcomes(ctx)
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		totals, err := s.repos.Innings.ListTotals(ctx)
		if err != nil {
			return fmt.Errorf("list innings: %w", err)
		}

		acc := newPlayerAccumulator(s.policy)
		if err := s.repos.Deliveries.ForEach(ctx, func(d model.Delivery) error {
			acc.add(d)
			return nil
		}); err != nil {
			return fmt.Errorf("scan deliveries: %w", err)
		}

		players := acc.finish()
		teamRows := ComputeTeamStats(s.policy, teams, outcomes, totals)

		if err := s.repos.Stats.ReplacePlayerStats(ctx, players); err != nil {
			return fmt.Errorf("replace player stats: %w", err)
		}
		if err := s.repos.Stats.ReplaceTeamStats(ctx, teamRows); err != nil {
			return fmt.Errorf("replace team stats: %w", err)
		}
		res = RecomputeResult{Players: len(players), Teams: len(teamRows), Deliveries: acc.deliveries}
		return nil
	})
	res.Duration = time.Since(start)
	if err != nil {
		s.log.Error().Err(err).Msg("Recompute failed, previous stats kept")
		return RecomputeResult{Duration: res.Duration}, fmt.Errorf("recompute: %w", err)
	}

	s.log.Info().
		Int("players", res.Players).
		Int("teams", res.Teams).
		Int("deliveries", res.Deliveries).
		Dur("duration", res.Duration).
		Msg("Statistics recomputed")
	return res, nil
}

// ComputeTeamStats derives one row per known team, ordered by name.
func ComputeTeamStats(policy AggregationPolicy, teams []model.Team, outcomes []model.MatchOutcome, totals []model.InningsTotal) []model.TeamStats {
	byMatch := make(map[int64][]model.InningsTotal, len(outcomes))
	for _, it := range totals {
		if it.Number > regularInnings {
			continue
		}
		byMatch[it.MatchID] = append(byMatch[it.MatchID], it)
	}

	out := make([]model.TeamStats, 0, len(teams))
	for _, t := range teams {
		row := model.TeamStats{TeamName: t.Name}
		scored := 0
		for _, m := range outcomes {
			if m.Team1 != t.Name && m.Team2 != t.Name {
				continue
			}
			row.MatchesPlayed++
			switch {
			case m.Winner == t.Name:
				row.MatchesWon++
			case m.Winner == "":
				row.MatchesNoResult++
			}
			for _, it := range byMatch[m.ID] {
				if it.Team == t.Name {
					row.TotalRunsScored += it.TotalRuns
					if scored == 0 || it.TotalRuns > row.HighestScore {
						row.HighestScore = it.TotalRuns
					}
					if scored == 0 || it.TotalRuns < row.LowestScore {
						row.LowestScore = it.TotalRuns
					}
					scored++
				} else {
					row.TotalRunsConceded += it.TotalRuns
				}
			}
		}
		row.MatchesLost = row.MatchesPlayed - row.MatchesWon
		if !policy.LostIncludesNoDecision {
			row.MatchesLost -= row.MatchesNoResult
		}
		row.WinPercentage = round2(100 * float64(row.MatchesWon) / float64(max(1, row.MatchesPlayed)))
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamName < out[j].TeamName })
	return out
}

type battingLine struct {
	runs, balls, sixes, fours int
	matches                   map[int64]struct{}
}

type bowlingLine struct {
	conceded, balls, wickets int
	matches                  map[int64]struct{}
}

type inningsKey struct {
	batter  string
	match   int64
	innings int
}

// playerAccumulator is the single pass over deliveries.
type playerAccumulator struct {
	policy     AggregationPolicy
	batting    map[string]*battingLine
	bowling    map[string]*bowlingLine
	perInnings map[inningsKey]int
	deliveries int
}

func newPlayerAccumulator(policy AggregationPolicy) *playerAccumulator {
	return &playerAccumulator{
		policy:     policy,
		batting:    make(map[string]*battingLine),
		bowling:    make(map[string]*bowlingLine),
		perInnings: make(map[inningsKey]int),
	}
}

func (a *playerAccumulator) add(d model.Delivery) {
	a.deliveries++
	if d.Batter != "" {
		b := a.batting[d.Batter]
		if b == nil {
			b = &battingLine{matches: make(map[int64]struct{})}
			a.batting[d.Batter] = b
		}
		b.runs += d.RunsBatter
		b.balls++
		b.matches[d.MatchID] = struct{}{}
		switch d.RunsBatter {
		case 6:
			b.sixes++
		case 4:
			b.fours++
		}
		if a.policy.ComputeHighestScore {
			a.perInnings[inningsKey{d.Batter, d.MatchID, d.Innings}] += d.RunsBatter
		}
	}
	if d.Bowler != "" {
		w := a.bowling[d.Bowler]
		if w == nil {
			w = &bowlingLine{matches: make(map[int64]struct{})}
			a.bowling[d.Bowler] = w
		}
		w.conceded += d.RunsTotal
		w.balls++
		w.matches[d.MatchID] = struct{}{}
		if d.WicketTaken && a.creditsBowler(d.WicketType) {
			w.wickets++
		}
	}
}

func (a *playerAccumulator) creditsBowler(kind string) bool {
	if a.policy.CreditAllWicketsToBowler {
		return true
	}
	_, excluded := nonBowlerDismissals[strings.ToLower(strings.TrimSpace(kind))]
	return !excluded
}

func (a *playerAccumulator) finish() []model.PlayerStats {
	names := make(map[string]struct{}, len(a.batting)+len(a.bowling))
	for n := range a.batting {
		names[n] = struct{}{}
	}
	for n := range a.bowling {
		names[n] = struct{}{}
	}

	type scoring struct{ highest, centuries, fifties int }
	scores := make(map[string]scoring)
	for k, runs := range a.perInnings {
		s := scores[k.batter]
		if runs > s.highest {
			s.highest = runs
		}
		switch {
		case runs >= 100:
			s.centuries++
		case runs >= 50:
			s.fifties++
		}
		scores[k.batter] = s
	}

	out := make([]model.PlayerStats, 0, len(names))
	for name := range names {
		ps := model.PlayerStats{PlayerName: name}
		if b := a.batting[name]; b != nil {
			ps.TotalRuns = b.runs
			ps.BallsFaced = b.balls
			ps.Sixes = b.sixes
			ps.Fours = b.fours
			ps.MatchesBatted = len(b.matches)
			ps.BattingAverage = round2(float64(b.runs) / float64(max(1, ps.MatchesBatted)))
			ps.StrikeRate = round2(100 * float64(b.runs) / float64(max(1, b.balls)))
		}
		if w := a.bowling[name]; w != nil {
			ps.WicketsTaken = w.wickets
			ps.RunsConceded = w.conceded
			ps.MatchesBowled = len(w.matches)
			ps.OversBowled = round1(float64(w.balls) / ballsPerOverForRates)
			if w.wickets > 0 {
				ps.BowlingAverage = round2(float64(w.conceded) / float64(w.wickets))
			}
			ps.EconomyRate = round2(ballsPerOverForRates * float64(w.conceded) / float64(max(1, w.balls)))
		}
		if s, ok := scores[name]; ok {
			ps.HighestScore = s.highest
			ps.Centuries = s.centuries
			ps.Fifties = s.fifties
		}
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerName < out[j].PlayerName })
	return out
}

// ComputePlayerStats runs the accumulator over an in-memory delivery list.
func ComputePlayerStats(policy AggregationPolicy, deliveries []model.Delivery) []model.PlayerStats {
	acc := newPlayerAccumulator(policy)
	for _, d := range deliveries {
		acc.add(d)
	}
	return acc.finish()
}
