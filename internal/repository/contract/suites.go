package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

// Repos bundles every repository a contract needs against one backing store.
type Repos struct {
	Matches    repository.MatchRepository
	Innings    repository.InningsRepository
	Deliveries repository.DeliveryRepository
	Teams      repository.TeamRepository
	Players    repository.PlayerRepository
	Stats      repository.StatsRepository
	Analytics  repository.AnalyticsRepository
	Tx         repository.TxManager
}

// Factory returns repositories over an empty store plus a cleanup func.
type Factory func(t *testing.T) (Repos, func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

var errMarker = errors.New("boom")

func day(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func ptr(n int) *int { return &n }

// seedMatch stores a finished match with two innings and returns its row id.
func seedMatch(t *testing.T, r Repos, externalID, city, venue string, first, second int) int64 {
	t.Helper()
	ctx := context.Background()
	m, err := r.Matches.Create(ctx, model.Match{
		MatchID: externalID, City: city, Venue: venue, Date: day("2008-04-18"),
		Season: "2008", MatchType: "T20", Gender: "male", Overs: 20, BallsPerOver: 6,
		Team1: "Kolkata Knight Riders", Team2: "Royal Challengers Bangalore",
		Winner: "Kolkata Knight Riders", Result: model.ResultNormal, WinByRuns: ptr(first - second),
		Umpires: []string{"Asad Rauf", "RE Koertzen"},
	})
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if _, err := r.Innings.Create(ctx, model.Innings{MatchID: m.ID, Number: 1, Team: "Kolkata Knight Riders", TotalRuns: first}); err != nil {
		t.Fatalf("seed innings 1: %v", err)
	}
	if _, err := r.Innings.Create(ctx, model.Innings{MatchID: m.ID, Number: 2, Team: "Royal Challengers Bangalore", TotalRuns: second, Target: ptr(first + 1)}); err != nil {
		t.Fatalf("seed innings 2: %v", err)
	}
	return m.ID
}

// seedInnings stores one match at venue with an innings by team for every total.
func seedInnings(t *testing.T, r Repos, externalID, venue, team string, totals ...int) {
	t.Helper()
	ctx := context.Background()
	m, err := r.Matches.Create(ctx, model.Match{
		MatchID: externalID, Venue: venue, Result: model.ResultNormal,
		Team1: team, Team2: "Opponent", Winner: team,
	})
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	for i, runs := range totals {
		if _, err := r.Innings.Create(ctx, model.Innings{MatchID: m.ID, Number: i + 1, Team: team, TotalRuns: runs}); err != nil {
			t.Fatalf("seed innings %d: %v", i+1, err)
		}
	}
}

func RunMatchRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("create_exists_count", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedMatch(t, r, "335982", "Bangalore", "M Chinnaswamy Stadium", 222, 82)

		ok, err := r.Matches.ExistsByExternalID(ctx, "335982")
		if err != nil || !ok {
			t.Fatalf("expected match to exist, got ok=%v err=%v", ok, err)
		}
		ok, err = r.Matches.ExistsByExternalID(ctx, "000000")
		if err != nil || ok {
			t.Fatalf("expected absent match, got ok=%v err=%v", ok, err)
		}
		n, err := r.Matches.Count(ctx)
		if err != nil || n != 1 {
			t.Fatalf("expected count 1, got %d err=%v", n, err)
		}
	})

	t.Run("duplicate_external_id", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		seedMatch(t, r, "335982", "", "", 100, 90)
		_, err := r.Matches.Create(context.Background(), model.Match{MatchID: "335982", Result: model.ResultNormal})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("list_outcomes", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		id := seedMatch(t, r, "1", "", "", 150, 120)
		out, err := r.Matches.ListOutcomes(context.Background())
		if err != nil {
			t.Fatalf("list outcomes: %v", err)
		}
		if len(out) != 1 || out[0].ID != id || out[0].Winner != "Kolkata Knight Riders" || out[0].Result != model.ResultNormal {
			t.Fatalf("unexpected outcomes: %+v", out)
		}
	})
}

func RunInningsAndDeliveryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("list_totals", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		id := seedMatch(t, r, "1", "", "", 150, 120)
		totals, err := r.Innings.ListTotals(context.Background())
		if err != nil {
			t.Fatalf("list totals: %v", err)
		}
		if len(totals) != 2 {
			t.Fatalf("expected 2 innings, got %d", len(totals))
		}
		for _, it := range totals {
			if it.MatchID != id {
				t.Fatalf("unexpected match id %d", it.MatchID)
			}
		}
	})

	t.Run("batch_and_stream_in_order", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedMatch(t, r, "1", "", "", 150, 120)
		batch := []model.Delivery{
			{MatchID: id, Innings: 1, Over: 0, Ball: 2, Batter: "SC Ganguly", Bowler: "P Kumar", RunsBatter: 4, RunsTotal: 4},
			{MatchID: id, Innings: 1, Over: 0, Ball: 1, Batter: "SC Ganguly", Bowler: "P Kumar", RunsExtras: 1, RunsTotal: 1, ExtrasType: model.ExtrasWide},
			{MatchID: id, Innings: 2, Over: 0, Ball: 1, Batter: "R Dravid", Bowler: "AB Dinda", WicketTaken: true,
				WicketType: "caught", WicketPlayerOut: "R Dravid", WicketFielders: []string{"DJ Hussey"}},
		}
		n, err := r.Deliveries.CreateBatch(ctx, batch)
		if err != nil || n != 3 {
			t.Fatalf("create batch: n=%d err=%v", n, err)
		}

		var got []model.Delivery
		if err := r.Deliveries.ForEach(ctx, func(d model.Delivery) error {
			got = append(got, d)
			return nil
		}); err != nil {
			t.Fatalf("for each: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 deliveries, got %d", len(got))
		}
		if got[0].Ball != 1 || got[0].ExtrasType != model.ExtrasWide || got[2].Innings != 2 {
			t.Fatalf("unexpected order: %+v", got)
		}
		if len(got[2].WicketFielders) != 1 || got[2].WicketFielders[0] != "DJ Hussey" {
			t.Fatalf("fielders not round-tripped: %+v", got[2].WicketFielders)
		}
	})

	t.Run("for_each_stops_on_error", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := seedMatch(t, r, "1", "", "", 150, 120)
		batch := []model.Delivery{
			{MatchID: id, Innings: 1, Over: 0, Ball: 1, Batter: "a", Bowler: "b"},
			{MatchID: id, Innings: 1, Over: 0, Ball: 2, Batter: "a", Bowler: "b"},
		}
		if _, err := r.Deliveries.CreateBatch(ctx, batch); err != nil {
			t.Fatalf("create batch: %v", err)
		}
		calls := 0
		err := r.Deliveries.ForEach(ctx, func(model.Delivery) error {
			calls++
			return errMarker
		})
		if !errors.Is(err, errMarker) || calls != 1 {
			t.Fatalf("expected one call and marker error, got calls=%d err=%v", calls, err)
		}
	})

	t.Run("runs_must_add_up", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		id := seedMatch(t, r, "1", "", "", 150, 120)
		_, err := r.Deliveries.CreateBatch(context.Background(), []model.Delivery{
			{MatchID: id, Innings: 1, Over: 0, Ball: 1, Batter: "a", Bowler: "b", RunsBatter: 4, RunsTotal: 5},
		})
		if !errors.Is(err, repository.ErrInvalidData) {
			t.Fatalf("expected ErrInvalidData, got %v", err)
		}
	})
}

func RunTeamAndPlayerContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("team_dedup_by_name", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := r.Teams.Create(ctx, model.Team{Name: "Mumbai Indians"}); err != nil {
			t.Fatalf("create team: %v", err)
		}
		ok, err := r.Teams.ExistsByName(ctx, "Mumbai Indians")
		if err != nil || !ok {
			t.Fatalf("expected team to exist, got ok=%v err=%v", ok, err)
		}
		if _, err := r.Teams.Create(ctx, model.Team{Name: "Mumbai Indians"}); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		list, err := r.Teams.List(ctx)
		if err != nil || len(list) != 1 {
			t.Fatalf("expected one team, got %d err=%v", len(list), err)
		}
	})

	t.Run("player_dedup_by_registry_id", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p, err := r.Players.Create(ctx, model.Player{Name: "SC Ganguly", CricsheetID: "ae7a2f3a"})
		if err != nil || p.ID == 0 {
			t.Fatalf("create player: %+v err=%v", p, err)
		}
		ok, err := r.Players.ExistsByExternalID(ctx, "ae7a2f3a")
		if err != nil || !ok {
			t.Fatalf("expected player to exist, got ok=%v err=%v", ok, err)
		}
		// same display name under another id is a different person
		if _, err := r.Players.Create(ctx, model.Player{Name: "SC Ganguly", CricsheetID: "ffffffff"}); err != nil {
			t.Fatalf("create namesake: %v", err)
		}
		if _, err := r.Players.Create(ctx, model.Player{Name: "Other", CricsheetID: "ae7a2f3a"}); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunStatsRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("replace_wipes_previous_rows", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := r.Stats.ReplacePlayerStats(ctx, []model.PlayerStats{{PlayerName: "A"}, {PlayerName: "B"}}); err != nil {
			t.Fatalf("replace 1: %v", err)
		}
		if err := r.Stats.ReplacePlayerStats(ctx, []model.PlayerStats{{PlayerName: "C", TotalRuns: 10}}); err != nil {
			t.Fatalf("replace 2: %v", err)
		}
		list, err := r.Stats.ListPlayerStats(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 || list[0].PlayerName != "C" || list[0].TotalRuns != 10 {
			t.Fatalf("unexpected rows: %+v", list)
		}
	})

	t.Run("team_stats_ranked_by_wins", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		rows := []model.TeamStats{
			{TeamName: "Deccan Chargers", MatchesPlayed: 10, MatchesWon: 2},
			{TeamName: "Chennai Super Kings", MatchesPlayed: 10, MatchesWon: 7, WinPercentage: 70},
		}
		if err := r.Stats.ReplaceTeamStats(ctx, rows); err != nil {
			t.Fatalf("replace: %v", err)
		}
		list, err := r.Stats.ListTeamStats(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 || list[0].TeamName != "Chennai Super Kings" || list[0].WinPercentage != 70 {
			t.Fatalf("unexpected order: %+v", list)
		}
	})

	t.Run("replace_with_empty", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := r.Stats.ReplaceTeamStats(ctx, []model.TeamStats{{TeamName: "X"}}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := r.Stats.ReplaceTeamStats(ctx, nil); err != nil {
			t.Fatalf("replace: %v", err)
		}
		list, err := r.Stats.ListTeamStats(ctx)
		if err != nil || len(list) != 0 {
			t.Fatalf("expected empty table, got %d err=%v", len(list), err)
		}
	})
}

func RunAnalyticsContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("innings_totals_and_average", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedMatch(t, r, "1", "Bangalore", "M Chinnaswamy Stadium", 222, 82)
		seedMatch(t, r, "2", "Mumbai", "Wankhede Stadium", 108, 0)

		high, err := r.Analytics.HighestTotals(ctx, repository.Top(2))
		if err != nil {
			t.Fatalf("highest: %v", err)
		}
		if len(high) != 2 || high[0].TotalRuns != 222 || high[1].TotalRuns != 108 {
			t.Fatalf("unexpected highest: %+v", high)
		}
		low, err := r.Analytics.LowestTotals(ctx, repository.Top(1))
		if err != nil {
			t.Fatalf("lowest: %v", err)
		}
		if len(low) != 1 || low[0].TotalRuns != 82 {
			t.Fatalf("lowest must skip zero totals, got %+v", low)
		}
		avg, err := r.Analytics.AverageFirstInnings(ctx)
		if err != nil {
			t.Fatalf("average: %v", err)
		}
		if avg.Innings != 2 || avg.Average != 165 {
			t.Fatalf("unexpected average: %+v", avg)
		}
	})

	t.Run("matches_by_city_and_venue", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedMatch(t, r, "1", "Bangalore", "M Chinnaswamy Stadium", 222, 82)
		seedMatch(t, r, "2", "Mumbai", "Wankhede Stadium", 165, 166)

		byCity, err := r.Analytics.MatchesByCity(ctx, "mumbai", repository.Top(30))
		if err != nil {
			t.Fatalf("by city: %v", err)
		}
		if len(byCity) != 1 || byCity[0].Venue != "Wankhede Stadium" {
			t.Fatalf("unexpected city rows: %+v", byCity)
		}
		byVenue, err := r.Analytics.MatchesByVenue(ctx, "chinnaswamy", repository.Top(30))
		if err != nil {
			t.Fatalf("by venue: %v", err)
		}
		if len(byVenue) != 1 || byVenue[0].City != "Bangalore" {
			t.Fatalf("unexpected venue rows: %+v", byVenue)
		}
		none, err := r.Analytics.MatchesByCity(ctx, "%", repository.Top(30))
		if err != nil || len(none) != 0 {
			t.Fatalf("wildcards must match literally, got %d err=%v", len(none), err)
		}
	})

	t.Run("chases_need_target_and_win", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		// seeded winner bats first, so this one is a defended total
		seedMatch(t, r, "1", "", "Eden Gardens", 150, 140)

		m, err := r.Matches.Create(ctx, model.Match{
			MatchID: "2", Venue: "Feroz Shah Kotla", Date: day("2008-04-19"), Result: model.ResultNormal,
			Team1: "Delhi Daredevils", Team2: "Kings XI Punjab", Winner: "Kings XI Punjab", WinByWickets: ptr(5),
		})
		if err != nil {
			t.Fatalf("seed match: %v", err)
		}
		if _, err := r.Innings.Create(ctx, model.Innings{MatchID: m.ID, Number: 1, Team: "Delhi Daredevils", TotalRuns: 171}); err != nil {
			t.Fatalf("seed innings 1: %v", err)
		}
		if _, err := r.Innings.Create(ctx, model.Innings{MatchID: m.ID, Number: 2, Team: "Kings XI Punjab", TotalRuns: 172, Target: ptr(172)}); err != nil {
			t.Fatalf("seed innings 2: %v", err)
		}

		chases, err := r.Analytics.SuccessfulChases(ctx, repository.Top(20))
		if err != nil {
			t.Fatalf("chases: %v", err)
		}
		if len(chases) != 1 || chases[0].ChasingTeam != "Kings XI Punjab" || chases[0].TotalRuns != 172 {
			t.Fatalf("unexpected chases: %+v", chases)
		}
	})

	t.Run("venue_scoring_min_innings", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			seedMatch(t, r, fmt.Sprintf("w%d", i), "Mumbai", "Wankhede Stadium", 180, 170)
		}
		for i := 0; i < 4; i++ {
			seedMatch(t, r, fmt.Sprintf("e%d", i), "Kolkata", "Eden Gardens", 200, 190)
		}
		seedInnings(t, r, "e-extra", "Eden Gardens", "Kolkata Knight Riders", 210)

		got, err := r.Analytics.VenueScoring(ctx, 10, repository.Top(15))
		if err != nil {
			t.Fatalf("venue scoring: %v", err)
		}
		// Eden Gardens has 9 innings and falls below the cut
		if len(got) != 1 || got[0].Venue != "Wankhede Stadium" || got[0].Innings != 10 || got[0].HighestScore != 180 {
			t.Fatalf("unexpected venues: %+v", got)
		}

		seedInnings(t, r, "e-extra-2", "Eden Gardens", "Kolkata Knight Riders", 220)
		got, err = r.Analytics.VenueScoring(ctx, 10, repository.Top(15))
		if err != nil {
			t.Fatalf("venue scoring: %v", err)
		}
		if len(got) != 2 || got[0].Venue != "Eden Gardens" || got[0].Innings != 10 {
			t.Fatalf("expected Eden Gardens first at 10 innings, got %+v", got)
		}
	})

	t.Run("team_scoring_min_innings", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		totals := func(n, runs int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = runs
			}
			return out
		}
		seedInnings(t, r, "csk", "Chepauk", "Chennai Super Kings", totals(20, 160)...)
		seedInnings(t, r, "dd", "Feroz Shah Kotla", "Delhi Daredevils", totals(19, 190)...)

		got, err := r.Analytics.TeamScoring(ctx, 20, repository.Top(10))
		if err != nil {
			t.Fatalf("team scoring: %v", err)
		}
		if len(got) != 1 || got[0].Team != "Chennai Super Kings" || got[0].Innings != 20 || got[0].AverageTotal != 160 {
			t.Fatalf("unexpected teams: %+v", got)
		}

		seedInnings(t, r, "dd-extra", "Feroz Shah Kotla", "Delhi Daredevils", 190)
		got, err = r.Analytics.TeamScoring(ctx, 20, repository.Top(10))
		if err != nil {
			t.Fatalf("team scoring: %v", err)
		}
		if len(got) != 2 || got[0].Team != "Delhi Daredevils" {
			t.Fatalf("expected Delhi Daredevils first at 20 innings, got %+v", got)
		}
	})

	t.Run("player_lookup", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		rows := []model.PlayerStats{
			{PlayerName: "V Kohli", TotalRuns: 973, HighestScore: 113, Centuries: 4},
			{PlayerName: "B Kumar", WicketsTaken: 26},
		}
		if err := r.Stats.ReplacePlayerStats(ctx, rows); err != nil {
			t.Fatalf("seed: %v", err)
		}
		bat, err := r.Analytics.BattingByName(ctx, "kohli", repository.Top(5))
		if err != nil || len(bat) != 1 {
			t.Fatalf("batting lookup: %+v err=%v", bat, err)
		}
		bowl, err := r.Analytics.BowlingByName(ctx, "kohli", repository.Top(5))
		if err != nil || len(bowl) != 0 {
			t.Fatalf("bowling lookup must require wickets: %+v err=%v", bowl, err)
		}
		tons, err := r.Analytics.Centuries(ctx, repository.Page{})
		if err != nil || len(tons) != 1 || tons[0].PlayerName != "V Kohli" {
			t.Fatalf("centuries: %+v err=%v", tons, err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := r.Teams.Create(ctx, model.Team{Name: "TxCommit"})
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if ok, err := r.Teams.ExistsByName(ctx, "TxCommit"); err != nil || !ok {
			t.Fatalf("expected committed row visible, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := r.Teams.Create(ctx, model.Team{Name: "TxRollback"}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if ok, err := r.Teams.ExistsByName(ctx, "TxRollback"); err != nil || ok {
			t.Fatalf("expected row gone after rollback, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("nested_failure_keeps_outer", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := r.Teams.Create(ctx, model.Team{Name: "Outer"}); err != nil {
				return err
			}
			inner := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
				if _, err := r.Teams.Create(ctx, model.Team{Name: "Inner"}); err != nil {
					return err
				}
				return errMarker
			})
			if !errors.Is(inner, errMarker) {
				t.Errorf("expected inner marker error, got %v", inner)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("outer: %v", err)
		}
		if ok, _ := r.Teams.ExistsByName(ctx, "Outer"); !ok {
			t.Fatalf("outer write lost")
		}
		if ok, _ := r.Teams.ExistsByName(ctx, "Inner"); ok {
			t.Fatalf("inner write survived its rollback")
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
