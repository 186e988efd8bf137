package model

import "time"

// Read-only row shapes returned by analytical queries. None of these are persisted.

// MatchSummary is a match listing row.
type MatchSummary struct {
	Date   *time.Time `json:"date,omitempty"`
	Team1  string     `json:"team1"`
	Team2  string     `json:"team2"`
	Winner string     `json:"winner"`
	City   string     `json:"city"`
	Venue  string     `json:"venue"`
}

// InningsScore is one team innings joined with its match.
type InningsScore struct {
	TotalRuns int        `json:"total_runs"`
	Team      string     `json:"team"`
	Venue     string     `json:"venue"`
	City      string     `json:"city"`
	Date      *time.Time `json:"date,omitempty"`
	Team1     string     `json:"team1"`
	Team2     string     `json:"team2"`
	Winner    string     `json:"winner"`
}

// ScoreAverage is an average innings total over a number of innings.
type ScoreAverage struct {
	Average float64 `json:"average"`
	Innings int     `json:"innings"`
}

// VenueScoring aggregates innings totals per venue.
type VenueScoring struct {
	Venue        string  `json:"venue"`
	AverageScore float64 `json:"average_score"`
	HighestScore int     `json:"highest_score"`
	Innings      int     `json:"innings"`
}

// Chase is a second innings won by the chasing side.
type Chase struct {
	Date        *time.Time `json:"date,omitempty"`
	TotalRuns   int        `json:"total_runs"`
	ChasingTeam string     `json:"chasing_team"`
	Team1       string     `json:"team1"`
	Team2       string     `json:"team2"`
	Winner      string     `json:"winner"`
	Venue       string     `json:"venue"`
}

// TeamScoring aggregates innings totals per batting team.
type TeamScoring struct {
	Team         string  `json:"team"`
	AverageTotal float64 `json:"average_total"`
	Innings      int     `json:"innings"`
}
