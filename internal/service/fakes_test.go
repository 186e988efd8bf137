package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

// memStore is an in-memory stand-in for the relational store. Its TxManager
// snapshots every table on entry and restores it when fn fails, which gives
// nested calls savepoint semantics.
type memStore struct {
	matches     []model.Match
	innings     []model.Innings
	deliveries  []model.Delivery
	teams       []model.Team
	players     []model.Player
	playerStats []model.PlayerStats
	teamStats   []model.TeamStats
	nextID      int64

	// failDeliveriesFor makes CreateBatch fail for the match with this external id.
	failDeliveriesFor string
	failTeamStats     bool
}

type snapshot struct {
	matches     []model.Match
	innings     []model.Innings
	deliveries  []model.Delivery
	teams       []model.Team
	players     []model.Player
	playerStats []model.PlayerStats
	teamStats   []model.TeamStats
}

func (s *memStore) snapshot() snapshot {
	return snapshot{
		matches:     append([]model.Match(nil), s.matches...),
		innings:     append([]model.Innings(nil), s.innings...),
		deliveries:  append([]model.Delivery(nil), s.deliveries...),
		teams:       append([]model.Team(nil), s.teams...),
		players:     append([]model.Player(nil), s.players...),
		playerStats: append([]model.PlayerStats(nil), s.playerStats...),
		teamStats:   append([]model.TeamStats(nil), s.teamStats...),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.matches = snap.matches
	s.innings = snap.innings
	s.deliveries = snap.deliveries
	s.teams = snap.teams
	s.players = snap.players
	s.playerStats = snap.playerStats
	s.teamStats = snap.teamStats
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memTx struct{ s *memStore }

func (t memTx) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	snap := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type memMatches struct{ s *memStore }

func (r memMatches) ExistsByExternalID(_ context.Context, matchID string) (bool, error) {
	for _, m := range r.s.matches {
		if m.MatchID == matchID {
			return true, nil
		}
	}
	return false, nil
}

func (r memMatches) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if ok, _ := r.ExistsByExternalID(ctx, m.MatchID); ok {
		return model.Match{}, repository.ErrAlreadyExists
	}
	m.ID = r.s.id()
	r.s.matches = append(r.s.matches, m)
	return m, nil
}

func (r memMatches) ListOutcomes(context.Context) ([]model.MatchOutcome, error) {
	out := make([]model.MatchOutcome, 0, len(r.s.matches))
	for _, m := range r.s.matches {
		out = append(out, model.MatchOutcome{ID: m.ID, Team1: m.Team1, Team2: m.Team2, Winner: m.Winner, Result: m.Result})
	}
	return out, nil
}

func (r memMatches) Count(context.Context) (int, error) { return len(r.s.matches), nil }

type memInnings struct{ s *memStore }

func (r memInnings) Create(_ context.Context, in model.Innings) (model.Innings, error) {
	in.ID = r.s.id()
	r.s.innings = append(r.s.innings, in)
	return in, nil
}

func (r memInnings) ListTotals(context.Context) ([]model.InningsTotal, error) {
	out := make([]model.InningsTotal, 0, len(r.s.innings))
	for _, in := range r.s.innings {
		out = append(out, model.InningsTotal{MatchID: in.MatchID, Number: in.Number, Team: in.Team, TotalRuns: in.TotalRuns})
	}
	return out, nil
}

type memDeliveries struct{ s *memStore }

func (r memDeliveries) CreateBatch(_ context.Context, ds []model.Delivery) (int64, error) {
	if r.s.failDeliveriesFor != "" && len(ds) > 0 {
		for _, m := range r.s.matches {
			if m.ID == ds[0].MatchID && m.MatchID == r.s.failDeliveriesFor {
				return 0, errors.New("copy failed")
			}
		}
	}
	for _, d := range ds {
		d.ID = r.s.id()
		r.s.deliveries = append(r.s.deliveries, d)
	}
	return int64(len(ds)), nil
}

func (r memDeliveries) ForEach(_ context.Context, fn func(model.Delivery) error) error {
	for _, d := range r.s.deliveries {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

type memTeams struct{ s *memStore }

func (r memTeams) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, t := range r.s.teams {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r memTeams) Create(ctx context.Context, t model.Team) (model.Team, error) {
	if ok, _ := r.ExistsByName(ctx, t.Name); ok {
		return model.Team{}, fmt.Errorf("team %q: %w", t.Name, repository.ErrAlreadyExists)
	}
	t.ID = r.s.id()
	r.s.teams = append(r.s.teams, t)
	return t, nil
}

func (r memTeams) List(context.Context) ([]model.Team, error) {
	out := append([]model.Team(nil), r.s.teams...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memPlayers struct{ s *memStore }

func (r memPlayers) ExistsByExternalID(_ context.Context, id string) (bool, error) {
	for _, p := range r.s.players {
		if p.CricsheetID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r memPlayers) Create(ctx context.Context, p model.Player) (model.Player, error) {
	if ok, _ := r.ExistsByExternalID(ctx, p.CricsheetID); ok {
		return model.Player{}, repository.ErrAlreadyExists
	}
	p.ID = r.s.id()
	r.s.players = append(r.s.players, p)
	return p, nil
}

type memStats struct{ s *memStore }

func (r memStats) ReplacePlayerStats(_ context.Context, rows []model.PlayerStats) error {
	r.s.playerStats = append([]model.PlayerStats(nil), rows...)
	return nil
}

func (r memStats) ReplaceTeamStats(_ context.Context, rows []model.TeamStats) error {
	if r.s.failTeamStats {
		return errors.New("disk full")
	}
	r.s.teamStats = append([]model.TeamStats(nil), rows...)
	return nil
}

func (r memStats) ListPlayerStats(context.Context) ([]model.PlayerStats, error) {
	return append([]model.PlayerStats(nil), r.s.playerStats...), nil
}

func (r memStats) ListTeamStats(context.Context) ([]model.TeamStats, error) {
	out := append([]model.TeamStats(nil), r.s.teamStats...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchesWon > out[j].MatchesWon })
	return out, nil
}

var (
	_ repository.TxManager          = memTx{}
	_ repository.MatchRepository    = memMatches{}
	_ repository.InningsRepository  = memInnings{}
	_ repository.DeliveryRepository = memDeliveries{}
	_ repository.TeamRepository     = memTeams{}
	_ repository.PlayerRepository   = memPlayers{}
	_ repository.StatsRepository    = memStats{}
)

// matchJSON renders a small two-innings record: team1 bats first and scores
// 7, team2 chases 8 with a target set, and winner takes the match.
func matchJSON(team1, team2, winner string) []byte {
	return []byte(fmt.Sprintf(`{
  "meta": {"data_version": "1.1.0"},
  "info": {
    "city": "Mumbai",
    "venue": "Wankhede Stadium",
    "dates": ["2019-04-03"],
    "season": 2019,
    "teams": [%[1]q, %[2]q],
    "outcome": {"winner": %[3]q, "by": {"wickets": 9}},
    "toss": {"winner": %[1]q, "decision": "bat"},
    "player_of_match": ["B Two"],
    "officials": {"umpires": ["U One", "U Two"]},
    "registry": {"people": {"A One": "a1", "A Two": "a2", "B One": "b1", "B Two": "b2"}}
  },
  "innings": [
    {"team": %[1]q, "overs": [{"over": 0, "deliveries": [
      {"batter": "A One", "bowler": "B One", "non_striker": "A Two", "runs": {"batter": 4, "extras": 0, "total": 4}},
      {"batter": "A One", "bowler": "B One", "non_striker": "A Two", "runs": {"batter": 0, "extras": 1, "total": 1}, "extras": {"wides": 1}},
      {"batter": "A One", "bowler": "B One", "non_striker": "A Two", "runs": {"batter": 2, "extras": 0, "total": 2},
       "wickets": [{"player_out": "A One", "kind": "run out", "fielders": [{"name": "B Two"}]}]}
    ]}]},
    {"team": %[2]q, "target": {"overs": 20, "runs": 8}, "overs": [{"over": 0, "deliveries": [
      {"batter": "B Two", "bowler": "A Two", "non_striker": "B One", "runs": {"batter": 6, "extras": 0, "total": 6}},
      {"batter": "B Two", "bowler": "A Two", "non_striker": "B One", "runs": {"batter": 2, "extras": 0, "total": 2}}
    ]}]}
  ]
}`, team1, team2, winner))
}
