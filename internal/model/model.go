// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import (
	"encoding/json"
	"time"
)

// Match outcome kinds as stored in matches.result.
const (
	ResultNormal   = "normal"
	ResultTie      = "tie"
	ResultNoResult = "no_result"
)

// Extras classifications as stored in deliveries.extras_type.
const (
	ExtrasWide   = "wide"
	ExtrasNoBall = "noball"
	ExtrasBye    = "bye"
	ExtrasLegBye = "legbye"
)

// Match is one ingested fixture. MatchID is the external (source file) id and is unique.
type Match struct {
	ID            int64           `json:"id"`
	MatchID       string          `json:"match_id"`
	City          string          `json:"city"`
	Venue         string          `json:"venue"`
	Date          *time.Time      `json:"date,omitempty"` // nil when the source date is not YYYY-MM-DD
	Season        string          `json:"season"`
	MatchType     string          `json:"match_type"`
	EventName     string          `json:"event_name"`
	MatchNumber   *int            `json:"match_number,omitempty"`
	Gender        string          `json:"gender"`
	Overs         int             `json:"overs"`
	BallsPerOver  int             `json:"balls_per_over"`
	Winner        string          `json:"winner"`
	Result        string          `json:"result"` // normal, tie, no_result
	WinByRuns     *int            `json:"win_by_runs,omitempty"`
	WinByWickets  *int            `json:"win_by_wickets,omitempty"`
	WinMethod     string          `json:"win_method"`
	TossWinner    string          `json:"toss_winner"`
	TossDecision  string          `json:"toss_decision"` // bat, field
	PlayerOfMatch string          `json:"player_of_match"`
	Umpires       []string        `json:"umpires"`
	MatchReferee  string          `json:"match_referee"`
	TVUmpire      string          `json:"tv_umpire"`
	ReserveUmpire string          `json:"reserve_umpire"`
	Team1         string          `json:"team1"`
	Team2         string          `json:"team2"`
	RawData       json.RawMessage `json:"-"`
}

// Innings is one team's batting turn. Target is only set on the second innings.
type Innings struct {
	ID               int64   `json:"id"`
	MatchID          int64   `json:"match_id"`
	Number           int     `json:"innings_number"`
	Team             string  `json:"team"`
	TotalRuns        int     `json:"total_runs"`
	TotalWickets     int     `json:"total_wickets"`
	TotalOvers       float64 `json:"total_overs"`
	RunRate          float64 `json:"run_rate"`
	PowerplayRuns    int     `json:"powerplay_runs"`
	PowerplayWickets int     `json:"powerplay_wickets"`
	Target           *int    `json:"target,omitempty"`
}

// Delivery is one ball. RunsBatter + RunsExtras always equals RunsTotal.
type Delivery struct {
	ID              int64    `json:"id"`
	MatchID         int64    `json:"match_id"`
	Innings         int      `json:"innings"`
	Over            int      `json:"over"`
	Ball            int      `json:"ball"`
	Batter          string   `json:"batter"`
	NonStriker      string   `json:"non_striker"`
	Bowler          string   `json:"bowler"`
	RunsBatter      int      `json:"runs_batter"`
	RunsExtras      int      `json:"runs_extras"`
	RunsTotal       int      `json:"runs_total"`
	ExtrasType      string   `json:"extras_type,omitempty"`
	WicketTaken     bool     `json:"wicket_taken"`
	WicketType      string   `json:"wicket_type,omitempty"`
	WicketPlayerOut string   `json:"wicket_player_out,omitempty"`
	WicketFielders  []string `json:"wicket_fielders,omitempty"`
	IsSuperOver     bool     `json:"is_super_over"`
}

// Team is deduplicated by name.
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Player is deduplicated by the registry id from the source.
type Player struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CricsheetID string `json:"cricsheet_id"`
}

// MatchBundle is the normalized form of one raw record, ready to persist.
// Innings and deliveries carry MatchID 0 until the match row is created.
type MatchBundle struct {
	Match      Match
	Innings    []Innings
	Deliveries []Delivery
	Teams      []string
	Players    []Player
}

// PlayerStats is a derived projection, wiped and rebuilt on every recompute.
type PlayerStats struct {
	PlayerName     string  `json:"player_name"`
	MatchesBatted  int     `json:"matches_batted"`
	TotalRuns      int     `json:"total_runs"`
	HighestScore   int     `json:"highest_score"`
	Centuries      int     `json:"centuries"`
	Fifties        int     `json:"fifties"`
	Sixes          int     `json:"sixes"`
	Fours          int     `json:"fours"`
	BallsFaced     int     `json:"balls_faced"`
	BattingAverage float64 `json:"batting_average"`
	StrikeRate     float64 `json:"strike_rate"`
	MatchesBowled  int     `json:"matches_bowled"`
	WicketsTaken   int     `json:"wickets_taken"`
	RunsConceded   int     `json:"runs_conceded"`
	OversBowled    float64 `json:"overs_bowled"`
	BowlingAverage float64 `json:"bowling_average"`
	EconomyRate    float64 `json:"economy_rate"`
	BestFigures    string  `json:"best_figures"`
}

// TeamStats is a derived projection, wiped and rebuilt on every recompute.
// MatchesLost is played minus won, so it includes ties and no-results by default.
type TeamStats struct {
	TeamName          string  `json:"team_name"`
	MatchesPlayed     int     `json:"matches_played"`
	MatchesWon        int     `json:"matches_won"`
	MatchesLost       int     `json:"matches_lost"`
	MatchesNoResult   int     `json:"matches_no_result"`
	TotalRunsScored   int     `json:"total_runs_scored"`
	TotalRunsConceded int     `json:"total_runs_conceded"`
	HighestScore      int     `json:"highest_score"`
	LowestScore       int     `json:"lowest_score"`
	WinPercentage     float64 `json:"win_percentage"`
}

// MatchOutcome is the slice of a match the aggregation engine needs.
type MatchOutcome struct {
	ID     int64
	Team1  string
	Team2  string
	Winner string
	Result string
}

// InningsTotal is the slice of an innings the aggregation engine needs.
type InningsTotal struct {
	MatchID   int64
	Number    int
	Team      string
	TotalRuns int
}
