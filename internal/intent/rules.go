package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/maxviazov/cricket-stats-service/internal/model"
	"github.com/maxviazov/cricket-stats-service/internal/report"
	"github.com/maxviazov/cricket-stats-service/internal/repository"
)

// Row limits per query.
const (
	recentMatchesLimit   = 50
	teamsByWinsLimit     = 10
	topPlayersLimit      = 20
	playerLookupLimit    = 5
	inningsTotalsLimit   = 15
	matchFilterLimit     = 30
	venueScoringLimit    = 15
	venueMinInnings      = 10
	chasesLimit          = 20
	teamScoringLimit     = 10
	teamScoringMinInning = 20
)

// PlayerPrompt is returned when a player lookup has no name to look up.
const PlayerPrompt = "Please specify a player name"

// MatchCounter counts stored matches.
type MatchCounter interface {
	Count(ctx context.Context) (int, error)
}

// StandingsLister lists every team's derived stats ranked by wins.
type StandingsLister interface {
	ListTeamStats(ctx context.Context) ([]model.TeamStats, error)
}

// Queries bundles the read-only stores the catalogue runs against.
type Queries struct {
	Analytics repository.AnalyticsRepository
	Matches   MatchCounter
	Standings StandingsLister
}

// player captures drop a leading "show me" so the name is all that remains.
const showFiller = `(?:(?:show|get|give)\s+(?:me\s+)?)?`

// Catalogue returns the rule table in evaluation order. Order matters: the
// count rule sits before the city rule so "how many matches in mumbai" counts.
func Catalogue(q Queries) []Rule {
	return []Rule{
		{
			Name:    "all_matches",
			Label:   "Show all matches",
			Pattern: regexp.MustCompile(`show.*all.*matches|list.*matches|all.*matches.*dataset`),
			Handler: q.recentMatches,
		},
		{
			Name:    "count_matches",
			Label:   "Count total matches",
			Pattern: regexp.MustCompile(`how many.*matches|total.*matches|count.*matches`),
			Handler: q.countMatches,
		},
		{
			Name:    "team_most_wins",
			Label:   "Team with most wins",
			Pattern: regexp.MustCompile(`which team.*won.*most|team.*most.*wins|most.*wins.*team`),
			Handler: q.teamsByWins,
		},
		{
			Name:    "team_stats",
			Label:   "Team statistics",
			Pattern: regexp.MustCompile(`team.*statistics|team.*stats|show.*team.*performance`),
			Handler: q.teamStandings,
		},
		{
			Name:    "most_runs",
			Label:   "Player with most runs",
			Pattern: regexp.MustCompile(`who.*scored.*most.*runs|most.*runs.*scored|highest.*run.*scorer`),
			Handler: q.topRunScorers,
		},
		{
			Name:    "most_wickets",
			Label:   "Player with most wickets",
			Pattern: regexp.MustCompile(`who.*took.*most.*wickets|most.*wickets|best.*bowler`),
			Handler: q.topWicketTakers,
		},
		{
			Name:  "player_batting",
			Label: "Player batting statistics",
			Pattern: regexp.MustCompile(`^` + showFiller + `(?P<player1>.+?)\s+batting.*stats` +
				`|^` + showFiller + `(?P<player2>.+?)\s+stats.*batting` +
				`|show\s+(?:me\s+)?(?P<player3>.+?)\s+batting`),
			Handler: q.playerBatting,
		},
		{
			Name:  "player_bowling",
			Label: "Player bowling statistics",
			Pattern: regexp.MustCompile(`^` + showFiller + `(?P<player1>.+?)\s+bowling.*stats` +
				`|^` + showFiller + `(?P<player2>.+?)\s+stats.*bowling` +
				`|show\s+(?:me\s+)?(?P<player3>.+?)\s+bowling`),
			Handler: q.playerBowling,
		},
		{
			Name:    "highest_total",
			Label:   "Highest team total",
			Pattern: regexp.MustCompile(`highest.*total.*score|maximum.*score|biggest.*total`),
			Handler: q.highestTotals,
		},
		{
			Name:    "lowest_total",
			Label:   "Lowest team total",
			Pattern: regexp.MustCompile(`lowest.*total.*score|minimum.*score|smallest.*total`),
			Handler: q.lowestTotals,
		},
		{
			Name:    "matches_by_city",
			Label:   "Matches by city",
			Pattern: regexp.MustCompile(`matches.*in.*(?P<city>mumbai|delhi|bangalore|chennai|kolkata|hyderabad|pune|jaipur|mohali)`),
			Handler: q.matchesByCity,
		},
		{
			Name:    "matches_by_venue",
			Label:   "Matches by venue",
			Pattern: regexp.MustCompile(`matches.*\bat\s+(?:the\s+)?(?P<venue>.*?(?:stadium|ground))`),
			Handler: q.matchesByVenue,
		},
		{
			Name:    "avg_first_innings",
			Label:   "Average first innings score",
			Pattern: regexp.MustCompile(`average.*first.*innings|first.*innings.*average`),
			Handler: q.averageFirstInnings,
		},
		{
			Name:    "venue_scoring",
			Label:   "Venues with highest scores",
			Pattern: regexp.MustCompile(`venue.*highest.*scoring|stadium.*highest.*scores`),
			Handler: q.venueScoring,
		},
		{
			Name:    "centuries",
			Label:   "All centuries scored",
			Pattern: regexp.MustCompile(`all.*centuries|centuries.*scored|100.*scores`),
			Handler: q.centuries,
		},
		{
			Name:    "successful_chases",
			Label:   "Most successful chase targets",
			Pattern: regexp.MustCompile(`successful.*chase|highest.*chase|best.*chase`),
			Handler: q.successfulChases,
		},
		{
			Name:    "team_scoring",
			Label:   "Powerplay performance by teams",
			Pattern: regexp.MustCompile(`powerplay.*performance|powerplay.*stats|team.*average.*total|average.*team.*total`),
			Handler: q.teamScoring,
		},
	}
}

func (q Queries) recentMatches(ctx context.Context, _ Params) (report.Result, error) {
	ms, err := q.Analytics.RecentMatches(ctx, repository.Top(recentMatchesLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, report.Row{formatDate(m.Date), versus(m.Team1, m.Team2), cell(m.Winner), cell(m.City), cell(m.Venue)})
	}
	return report.Rows(rows...), nil
}

func (q Queries) countMatches(ctx context.Context, _ Params) (report.Result, error) {
	n, err := q.Matches.Count(ctx)
	if err != nil {
		return report.Result{}, err
	}
	return report.Text(fmt.Sprintf("Total matches in database: %d", n)), nil
}

func (q Queries) teamsByWins(ctx context.Context, _ Params) (report.Result, error) {
	ts, err := q.Analytics.TeamsByWins(ctx, repository.Top(teamsByWinsLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, report.Row{
			t.TeamName,
			fmt.Sprintf("%d wins", t.MatchesWon),
			fmt.Sprintf("%d matches", t.MatchesPlayed),
			report.Decimal(t.WinPercentage) + "% win rate",
		})
	}
	return report.Rows(rows...), nil
}

func (q Queries) teamStandings(ctx context.Context, _ Params) (report.Result, error) {
	ts, err := q.Standings.ListTeamStats(ctx)
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, report.Row{
			t.TeamName,
			strconv.Itoa(t.MatchesPlayed),
			strconv.Itoa(t.MatchesWon),
			strconv.Itoa(t.MatchesLost),
			report.Decimal(t.WinPercentage),
			strconv.Itoa(t.HighestScore),
			strconv.Itoa(t.LowestScore),
		})
	}
	return report.Rows(rows...), nil
}

func (q Queries) topRunScorers(ctx context.Context, _ Params) (report.Result, error) {
	ps, err := q.Analytics.TopRunScorers(ctx, repository.Top(topPlayersLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, report.Row{
			p.PlayerName,
			fmt.Sprintf("%d runs", p.TotalRuns),
			fmt.Sprintf("%d matches", p.MatchesBatted),
			fmt.Sprintf("HS: %d", p.HighestScore),
			"Avg: " + report.Decimal(p.BattingAverage),
			"SR: " + report.Decimal(p.StrikeRate),
		})
	}
	return report.Rows(rows...), nil
}

func (q Queries) topWicketTakers(ctx context.Context, _ Params) (report.Result, error) {
	ps, err := q.Analytics.TopWicketTakers(ctx, repository.Top(topPlayersLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, report.Row{
			p.PlayerName,
			fmt.Sprintf("%d wickets", p.WicketsTaken),
			fmt.Sprintf("%d matches", p.MatchesBowled),
			"Avg: " + report.Decimal(p.BowlingAverage),
			"Econ: " + report.Decimal(p.EconomyRate),
			"Overs: " + report.Decimal(p.OversBowled),
		})
	}
	return report.Rows(rows...), nil
}

var fillerWords = map[string]bool{"show": true, "get": true, "give": true, "me": true}

// playerName returns the captured name, or "" when the capture holds nothing
// but filler words, as in "show me batting stats".
func playerName(p Params) string {
	name := strings.TrimSpace(p.Get("player"))
	for _, w := range strings.Fields(name) {
		if !fillerWords[w] {
			return name
		}
	}
	return ""
}

func (q Queries) playerBatting(ctx context.Context, p Params) (report.Result, error) {
	name := playerName(p)
	if name == "" {
		return report.Text(PlayerPrompt), nil
	}
	ps, err := q.Analytics.BattingByName(ctx, name, repository.Top(playerLookupLimit))
	if err != nil {
		return report.Result{}, err
	}
	if len(ps) == 0 {
		return report.Text(fmt.Sprintf("No batting stats found for player matching '%s'", name)), nil
	}
	blocks := make([]string, 0, len(ps))
	for _, s := range ps {
		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("🏏 **%s** Batting Stats:", s.PlayerName),
			fmt.Sprintf("• Total Runs: %d", s.TotalRuns),
			fmt.Sprintf("• Matches: %d", s.MatchesBatted),
			fmt.Sprintf("• Highest Score: %d", s.HighestScore),
			"• Average: " + report.Decimal(s.BattingAverage),
			"• Strike Rate: " + report.Decimal(s.StrikeRate),
			fmt.Sprintf("• Centuries: %d", s.Centuries),
			fmt.Sprintf("• Fifties: %d", s.Fifties),
			fmt.Sprintf("• Sixes: %d", s.Sixes),
			fmt.Sprintf("• Fours: %d", s.Fours),
		}, "\n"))
	}
	return report.Text(strings.Join(blocks, "\n\n")), nil
}

func (q Queries) playerBowling(ctx context.Context, p Params) (report.Result, error) {
	name := playerName(p)
	if name == "" {
		return report.Text(PlayerPrompt), nil
	}
	ps, err := q.Analytics.BowlingByName(ctx, name, repository.Top(playerLookupLimit))
	if err != nil {
		return report.Result{}, err
	}
	if len(ps) == 0 {
		return report.Text(fmt.Sprintf("No bowling stats found for player matching '%s'", name)), nil
	}
	blocks := make([]string, 0, len(ps))
	for _, s := range ps {
		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("⚾ **%s** Bowling Stats:", s.PlayerName),
			fmt.Sprintf("• Wickets: %d", s.WicketsTaken),
			fmt.Sprintf("• Matches: %d", s.MatchesBowled),
			fmt.Sprintf("• Runs Conceded: %d", s.RunsConceded),
			"• Bowling Average: " + report.Decimal(s.BowlingAverage),
			"• Economy Rate: " + report.Decimal(s.EconomyRate),
			"• Overs Bowled: " + report.Decimal(s.OversBowled),
		}, "\n"))
	}
	return report.Text(strings.Join(blocks, "\n\n")), nil
}

func (q Queries) highestTotals(ctx context.Context, _ Params) (report.Result, error) {
	scores, err := q.Analytics.HighestTotals(ctx, repository.Top(inningsTotalsLimit))
	if err != nil {
		return report.Result{}, err
	}
	return inningsRows(scores), nil
}

func (q Queries) lowestTotals(ctx context.Context, _ Params) (report.Result, error) {
	scores, err := q.Analytics.LowestTotals(ctx, repository.Top(inningsTotalsLimit))
	if err != nil {
		return report.Result{}, err
	}
	return inningsRows(scores), nil
}

func inningsRows(scores []model.InningsScore) report.Result {
	rows := make([]report.Row, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, report.Row{
			fmt.Sprintf("%s: %d", s.Team, s.TotalRuns),
			versus(s.Team1, s.Team2),
			cell(s.Venue),
			cell(s.City),
			"Won by: " + cell(s.Winner),
		})
	}
	return report.Rows(rows...)
}

func (q Queries) matchesByCity(ctx context.Context, p Params) (report.Result, error) {
	ms, err := q.Analytics.MatchesByCity(ctx, p.Get("city"), repository.Top(matchFilterLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, report.Row{formatDate(m.Date), versus(m.Team1, m.Team2), cell(m.Winner), cell(m.Venue)})
	}
	return report.Rows(rows...), nil
}

func (q Queries) matchesByVenue(ctx context.Context, p Params) (report.Result, error) {
	ms, err := q.Analytics.MatchesByVenue(ctx, p.Get("venue"), repository.Top(matchFilterLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, report.Row{formatDate(m.Date), versus(m.Team1, m.Team2), cell(m.Winner), cell(m.City)})
	}
	return report.Rows(rows...), nil
}

func (q Queries) averageFirstInnings(ctx context.Context, _ Params) (report.Result, error) {
	avg, err := q.Analytics.AverageFirstInnings(ctx)
	if err != nil {
		return report.Result{}, err
	}
	if avg.Innings == 0 {
		return report.Empty(), nil
	}
	return report.Text(fmt.Sprintf("Average first innings score: %.1f runs (from %d innings)", avg.Average, avg.Innings)), nil
}

func (q Queries) venueScoring(ctx context.Context, _ Params) (report.Result, error) {
	vs, err := q.Analytics.VenueScoring(ctx, venueMinInnings, repository.Top(venueScoringLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, report.Row{
			v.Venue,
			fmt.Sprintf("Avg: %.1f", v.AverageScore),
			fmt.Sprintf("Highest: %d", v.HighestScore),
			fmt.Sprintf("%d innings", v.Innings),
		})
	}
	return report.Rows(rows...), nil
}

func (q Queries) centuries(ctx context.Context, _ Params) (report.Result, error) {
	ps, err := q.Analytics.Centuries(ctx, repository.Page{})
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, report.Row{
			p.PlayerName,
			fmt.Sprintf("Best: %d", p.HighestScore),
			fmt.Sprintf("Total: %d runs", p.TotalRuns),
			fmt.Sprintf("%d matches", p.MatchesBatted),
		})
	}
	return report.Rows(rows...), nil
}

func (q Queries) successfulChases(ctx context.Context, _ Params) (report.Result, error) {
	cs, err := q.Analytics.SuccessfulChases(ctx, repository.Top(chasesLimit))
	if err != nil {
		return report.Result{}, err
	}
	rows := make([]report.Row, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, report.Row{
			formatDate(c.Date),
			fmt.Sprintf("%s: %d", c.ChasingTeam, c.TotalRuns),
			versus(c.Team1, c.Team2),
			cell(c.Venue),
		})
	}
	return report.Rows(rows...), nil
}

func (q Queries) teamScoring(ctx context.Context, _ Params) (report.Result, error) {
	ts, err := q.Analytics.TeamScoring(ctx, teamScoringMinInning, repository.Top(teamScoringLimit))
	if err != nil {
		return report.Result{}, err
	}
	if len(ts) == 0 {
		return report.Empty(), nil
	}
	lines := make([]string, 0, len(ts)+2)
	lines = append(lines, "🚀 **Team Performance Overview**", "")
	for _, t := range ts {
		lines = append(lines, fmt.Sprintf("• %s: %.1f avg runs (%d matches)", t.Team, t.AverageTotal, t.Innings))
	}
	return report.Text(strings.Join(lines, "\n")), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func versus(a, b string) string { return cell(a) + " vs " + cell(b) }

// cell renders a missing value as "-".
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
