package service_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-stats-service/internal/cricsheet"
	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/service"
)

func newStats(s *memStore, policy service.AggregationPolicy) service.StatsService {
	repos := service.AggregateRepos{
		Matches:    memMatches{s},
		Innings:    memInnings{s},
		Deliveries: memDeliveries{s},
		Teams:      memTeams{s},
		Stats:      memStats{s},
	}
	return service.NewStatsService(repos, memTx{s}, policy, &sync.RWMutex{}, zerolog.New(io.Discard))
}

func TestDefaultAggregationPolicy(t *testing.T) {
	p := service.DefaultAggregationPolicy()
	assert.True(t, p.CreditAllWicketsToBowler)
	assert.True(t, p.LostIncludesNoDecision)
	assert.False(t, p.ComputeHighestScore)
}

func TestComputeTeamStats_WinsAndLosses(t *testing.T) {
	teams := []model.Team{{Name: "Mumbai Indians"}, {Name: "Chennai Super Kings"}}
	var outcomes []model.MatchOutcome
	for i := 0; i < 10; i++ {
		o := model.MatchOutcome{ID: int64(i + 1), Team1: "Mumbai Indians", Team2: "Chennai Super Kings", Winner: "Chennai Super Kings"}
		switch {
		case i < 4:
			o.Winner = "Mumbai Indians"
		case i == 4:
			o.Winner = ""
			o.Result = model.ResultNoResult
		}
		outcomes = append(outcomes, o)
	}

	rows := service.ComputeTeamStats(service.DefaultAggregationPolicy(), teams, outcomes, nil)
	require.Len(t, rows, 2)
	csk, mi := rows[0], rows[1]
	assert.Equal(t, "Mumbai Indians", mi.TeamName)
	assert.Equal(t, 10, mi.MatchesPlayed)
	assert.Equal(t, 4, mi.MatchesWon)
	assert.Equal(t, 6, mi.MatchesLost)
	assert.Equal(t, 1, mi.MatchesNoResult)
	assert.Equal(t, 40.0, mi.WinPercentage)
	assert.Equal(t, 5, csk.MatchesWon)
	assert.Equal(t, 50.0, csk.WinPercentage)

	strict := service.DefaultAggregationPolicy()
	strict.LostIncludesNoDecision = false
	rows = service.ComputeTeamStats(strict, teams, outcomes, nil)
	assert.Equal(t, 5, rows[1].MatchesLost)
}

func TestComputeTeamStats_Scoring(t *testing.T) {
	teams := []model.Team{{Name: "A"}, {Name: "B"}, {Name: "Idle"}}
	outcomes := []model.MatchOutcome{
		{ID: 1, Team1: "A", Team2: "B", Winner: "A"},
		{ID: 2, Team1: "B", Team2: "A", Winner: "B"},
	}
	totals := []model.InningsTotal{
		{MatchID: 1, Number: 1, Team: "A", TotalRuns: 180},
		{MatchID: 1, Number: 2, Team: "B", TotalRuns: 150},
		{MatchID: 2, Number: 1, Team: "B", TotalRuns: 200},
		{MatchID: 2, Number: 2, Team: "A", TotalRuns: 120},
		{MatchID: 2, Number: 3, Team: "A", TotalRuns: 25}, // super over
	}
	rows := service.ComputeTeamStats(service.DefaultAggregationPolicy(), teams, outcomes, totals)
	require.Len(t, rows, 3)

	a := rows[0]
	assert.Equal(t, 300, a.TotalRunsScored)
	assert.Equal(t, 350, a.TotalRunsConceded)
	assert.Equal(t, 180, a.HighestScore)
	assert.Equal(t, 120, a.LowestScore)
	assert.Equal(t, 50.0, a.WinPercentage)

	idle := rows[2]
	assert.Equal(t, "Idle", idle.TeamName)
	assert.Zero(t, idle.MatchesPlayed)
	assert.Zero(t, idle.WinPercentage)
}

func TestComputePlayerStats(t *testing.T) {
	deliveries := []model.Delivery{
		{MatchID: 1, Innings: 1, Batter: "Bat", Bowler: "Bowl", RunsBatter: 4, RunsTotal: 4},
		{MatchID: 1, Innings: 1, Batter: "Bat", Bowler: "Bowl", RunsBatter: 6, RunsTotal: 6},
		{MatchID: 1, Innings: 1, Batter: "Bat", Bowler: "Bowl", RunsExtras: 1, RunsTotal: 1, ExtrasType: model.ExtrasWide},
		{MatchID: 1, Innings: 1, Batter: "Bat", Bowler: "Bowl", WicketTaken: true, WicketType: "run out"},
		{MatchID: 2, Innings: 2, Batter: "Bat", Bowler: "Other", RunsBatter: 1, RunsTotal: 1},
		{MatchID: 2, Innings: 2, Batter: "Bat", Bowler: "Other", WicketTaken: true, WicketType: "bowled"},
	}

	rows := service.ComputePlayerStats(service.DefaultAggregationPolicy(), deliveries)
	require.Len(t, rows, 3)
	bat, bowl, other := rows[0], rows[1], rows[2]

	assert.Equal(t, "Bat", bat.PlayerName)
	assert.Equal(t, 11, bat.TotalRuns)
	assert.Equal(t, 6, bat.BallsFaced)
	assert.Equal(t, 2, bat.MatchesBatted)
	assert.Equal(t, 1, bat.Sixes)
	assert.Equal(t, 1, bat.Fours)
	assert.Equal(t, 5.5, bat.BattingAverage)
	assert.Equal(t, 183.33, bat.StrikeRate)
	assert.Zero(t, bat.HighestScore)
	assert.Zero(t, bat.MatchesBowled)

	assert.Equal(t, "Bowl", bowl.PlayerName)
	assert.Equal(t, 1, bowl.WicketsTaken)
	assert.Equal(t, 11, bowl.RunsConceded)
	assert.Equal(t, 0.7, bowl.OversBowled)
	assert.Equal(t, 11.0, bowl.BowlingAverage)
	assert.Equal(t, 16.5, bowl.EconomyRate)
	assert.Equal(t, 1, bowl.MatchesBowled)
	assert.Zero(t, bowl.TotalRuns)

	assert.Equal(t, 1, other.WicketsTaken)
	assert.Equal(t, 3.0, other.EconomyRate)

	strict := service.DefaultAggregationPolicy()
	strict.CreditAllWicketsToBowler = false
	rows = service.ComputePlayerStats(strict, deliveries)
	assert.Zero(t, rows[1].WicketsTaken)
	assert.Zero(t, rows[1].BowlingAverage)
	assert.Equal(t, 1, rows[2].WicketsTaken)
}

func TestComputePlayerStats_HighestScore(t *testing.T) {
	var deliveries []model.Delivery
	add := func(match int64, runs ...int) {
		for _, r := range runs {
			deliveries = append(deliveries, model.Delivery{MatchID: match, Innings: 1, Batter: "Bat", Bowler: "Bowl", RunsBatter: r, RunsTotal: r})
		}
	}
	for i := 0; i < 17; i++ {
		add(1, 6)
	}
	add(2, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4) // 52
	add(3, 1)

	policy := service.DefaultAggregationPolicy()
	policy.ComputeHighestScore = true
	rows := service.ComputePlayerStats(policy, deliveries)
	bat := rows[0]
	assert.Equal(t, 102, bat.HighestScore)
	assert.Equal(t, 1, bat.Centuries)
	assert.Equal(t, 1, bat.Fifties)
}

func seedMatches(t *testing.T, s *memStore, n int) {
	t.Helper()
	var recs []cricsheet.Record
	for i := 0; i < n; i++ {
		winner := "Mumbai Indians"
		if i%3 == 0 {
			winner = "Chennai Super Kings"
		}
		recs = append(recs, cricsheet.Record{
			ExternalID: fmt.Sprintf("%d", 5000+i),
			Data:       matchJSON("Mumbai Indians", "Chennai Super Kings", winner),
		})
	}
	_, err := newIngest(s).IngestAll(context.Background(), cricsheet.NewSliceSource(recs...))
	require.NoError(t, err)
}

func TestRecompute_IsRepeatable(t *testing.T) {
	s := &memStore{}
	seedMatches(t, s, 6)
	svc := newStats(s, service.DefaultAggregationPolicy())

	res, err := svc.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Teams)
	assert.Equal(t, 4, res.Players)
	assert.Equal(t, 30, res.Deliveries)
	firstPlayers, firstTeams := s.playerStats, s.teamStats

	_, err = svc.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstPlayers, s.playerStats)
	assert.Equal(t, firstTeams, s.teamStats)

	mi := s.teamStats[1]
	assert.Equal(t, "Mumbai Indians", mi.TeamName)
	assert.Equal(t, 6, mi.MatchesPlayed)
	assert.Equal(t, 4, mi.MatchesWon)
	assert.Equal(t, 66.67, mi.WinPercentage)
}

func TestRecompute_FailureKeepsPreviousStats(t *testing.T) {
	s := &memStore{}
	seedMatches(t, s, 3)
	svc := newStats(s, service.DefaultAggregationPolicy())
	_, err := svc.Recompute(context.Background())
	require.NoError(t, err)
	before := s.snapshot()

	seedMatches(t, s, 6)
	s.failTeamStats = true
	_, err = svc.Recompute(context.Background())
	require.Error(t, err)

	assert.Equal(t, before.playerStats, s.playerStats)
	assert.Equal(t, before.teamStats, s.teamStats)
}

func TestRecompute_EmptyStore(t *testing.T) {
	s := &memStore{}
	res, err := newStats(s, service.DefaultAggregationPolicy()).Recompute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Players)
	assert.Empty(t, s.playerStats)
	assert.Empty(t, s.teamStats)
}
