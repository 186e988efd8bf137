package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/maxviazov/cricket-stats-service/internal/cricsheet"
	"github.com/maxviazov/cricket-stats-service/internal/model"
)

// Defaults applied when a raw record omits the field.
const (
	DefaultMatchType    = "T20"
	DefaultEventName    = "Indian Premier League"
	DefaultGender       = "male"
	DefaultOvers        = 20
	DefaultBallsPerOver = 6

	dateLayout = "2006-01-02"
	// ballsPerOverForRates is fixed at six for total_overs and run_rate,
	// whatever balls_per_over the record declares.
	ballsPerOverForRates = 6
	chaseInnings         = 2
)

// extrasPrecedence decides extras_type when a delivery records more than one kind.
var extrasPrecedence = []struct {
	key  string
	kind string
}{
	{"wides", model.ExtrasWide},
	{"noballs", model.ExtrasNoBall},
	{"byes", model.ExtrasBye},
	{"legbyes", model.ExtrasLegBye},
}

// Normalize turns one decoded record into the entities to persist. It is pure:
// no store access, the same input always yields the same bundle.
func Normalize(externalID string, raw cricsheet.Match, payload []byte) (model.MatchBundle, error) {
	var ferrs []FieldError
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		ferrs = append(ferrs, FieldError{Field: "match_id", Message: "must not be empty"})
	}
	info := raw.Info
	if len(info.Teams) < 2 || strings.TrimSpace(info.Teams[0]) == "" || strings.TrimSpace(info.Teams[1]) == "" {
		ferrs = append(ferrs, FieldError{Field: "info.teams", Message: "must list two teams"})
	}
	for i, in := range raw.Innings {
		if strings.TrimSpace(in.Team) == "" {
			ferrs = append(ferrs, FieldError{Field: fmt.Sprintf("innings[%d].team", i), Message: "must not be empty"})
		}
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.MatchBundle{}, err
	}

	match := normalizeMatch(externalID, info)
	match.RawData = payload

	bundle := model.MatchBundle{
		Match: match,
		Teams: uniqueNonEmpty(match.Team1, match.Team2),
	}

	for idx, in := range raw.Innings {
		number := idx + 1
		innings, deliveries, err := normalizeInnings(number, in)
		if err != nil {
			return model.MatchBundle{}, err
		}
		bundle.Innings = append(bundle.Innings, innings)
		bundle.Deliveries = append(bundle.Deliveries, deliveries...)
	}

	bundle.Players = registryPlayers(info.Registry.People)
	return bundle, nil
}

func normalizeMatch(externalID string, info cricsheet.Info) model.Match {
	m := model.Match{
		MatchID:      externalID,
		City:         info.City,
		Venue:        info.Venue,
		Date:         parseMatchDate(info.Dates),
		Season:       string(info.Season),
		MatchType:    orDefault(info.MatchType, DefaultMatchType),
		EventName:    DefaultEventName,
		Gender:       orDefault(info.Gender, DefaultGender),
		Overs:        intOrDefault(info.Overs, DefaultOvers),
		BallsPerOver: intOrDefault(info.BallsPerOver, DefaultBallsPerOver),
		Winner:       info.Outcome.Winner,
		Result:       normalizeResult(info.Outcome.Result),
		WinByRuns:    info.Outcome.By.Runs,
		WinByWickets: info.Outcome.By.Wickets,
		WinMethod:    info.Outcome.Method,
		TossWinner:   info.Toss.Winner,
		TossDecision: info.Toss.Decision,
		Umpires:      info.Officials.Umpires,
		Team1:        strings.TrimSpace(info.Teams[0]),
		Team2:        strings.TrimSpace(info.Teams[1]),
	}
	if info.Event != nil {
		m.EventName = orDefault(info.Event.Name, DefaultEventName)
		m.MatchNumber = info.Event.MatchNumber
	}
	m.PlayerOfMatch = first(info.PlayerOfMatch)
	m.MatchReferee = first(info.Officials.MatchReferees)
	m.TVUmpire = first(info.Officials.TVUmpires)
	m.ReserveUmpire = first(info.Officials.ReserveUmpires)
	if m.Umpires == nil {
		m.Umpires = []string{}
	}
	return m
}

func normalizeInnings(number int, in cricsheet.Innings) (model.Innings, []model.Delivery, error) {
	out := model.Innings{Number: number, Team: strings.TrimSpace(in.Team)}
	var (
		balls      int
		deliveries []model.Delivery
	)
	for overIdx, over := range in.Overs {
		for ballIdx, raw := range over.Deliveries {
			if raw.Runs.Batter+raw.Runs.Extras != raw.Runs.Total {
				return model.Innings{}, nil, NewInvalidInputError([]FieldError{{
					Field:   fmt.Sprintf("innings[%d].overs[%d].deliveries[%d].runs", number-1, overIdx, ballIdx),
					Message: fmt.Sprintf("batter %d + extras %d != total %d", raw.Runs.Batter, raw.Runs.Extras, raw.Runs.Total),
				}})
			}
			d := normalizeDelivery(raw)
			d.Innings = number
			d.Over = overIdx + 1
			d.Ball = ballIdx + 1
			d.IsSuperOver = in.SuperOver
			deliveries = append(deliveries, d)

			out.TotalRuns += raw.Runs.Total
			out.TotalWickets += len(raw.Wickets)
			balls++
		}
	}

	out.TotalOvers, out.RunRate = oversAndRunRate(out.TotalRuns, balls)
	if number == chaseInnings && in.Target != nil {
		out.Target = in.Target.Runs
	}
	return out, deliveries, nil
}

// oversAndRunRate counts every delivery, extras included, as a ball bowled.
// The rate divides by the stored (rounded) overs so the two columns stay consistent.
func oversAndRunRate(runs, balls int) (float64, float64) {
	overs := round1(float64(balls) / ballsPerOverForRates)
	if overs == 0 {
		return 0, 0
	}
	return overs, round2(float64(runs) / overs)
}

func normalizeDelivery(raw cricsheet.Delivery) model.Delivery {
	d := model.Delivery{
		Batter:      raw.Batter,
		NonStriker:  raw.NonStriker,
		Bowler:      raw.Bowler,
		RunsBatter:  raw.Runs.Batter,
		RunsExtras:  raw.Runs.Extras,
		RunsTotal:   raw.Runs.Total,
		ExtrasType:  classifyExtras(raw.Extras),
		WicketTaken: len(raw.Wickets) > 0,
	}
	// only the first dismissal on a delivery is kept
	if len(raw.Wickets) > 0 {
		w := raw.Wickets[0]
		d.WicketType = w.Kind
		d.WicketPlayerOut = w.PlayerOut
		d.WicketFielders = make([]string, 0, len(w.Fielders))
		for _, f := range w.Fielders {
			if f.Name != "" {
				d.WicketFielders = append(d.WicketFielders, f.Name)
			}
		}
	}
	return d
}

func classifyExtras(extras map[string]int) string {
	for _, e := range extrasPrecedence {
		if _, ok := extras[e.key]; ok {
			return e.kind
		}
	}
	return ""
}

// parseMatchDate reads the first listed date; anything but YYYY-MM-DD yields nil.
func parseMatchDate(dates []string) *time.Time {
	if len(dates) == 0 {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(dates[0]))
	if err != nil {
		return nil
	}
	return &t
}

func normalizeResult(r string) string {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case "":
		return model.ResultNormal
	case "tie":
		return model.ResultTie
	default:
		// "no result", and the rare "draw", leave the match without a winner
		return model.ResultNoResult
	}
}

func registryPlayers(people map[string]string) []model.Player {
	names := make([]string, 0, len(people))
	for name := range people {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]struct{}, len(names))
	out := make([]model.Player, 0, len(names))
	for _, name := range names {
		id := strings.TrimSpace(people[name])
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, model.Player{Name: name, CricsheetID: id})
	}
	return out
}

func uniqueNonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, o := range out {
			if o == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
