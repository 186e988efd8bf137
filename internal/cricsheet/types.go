// Package cricsheet decodes ball-by-ball match files in the cricsheet JSON layout
// and streams them from a directory.
package cricsheet

import (
	"bytes"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Match is one raw record: metadata plus the ordered innings.
type Match struct {
	Info    Info      `json:"info"`
	Innings []Innings `json:"innings"`
}

type Info struct {
	City          string     `json:"city"`
	Venue         string     `json:"venue"`
	Dates         []string   `json:"dates"`
	Season        FlexString `json:"season"`
	MatchType     string     `json:"match_type"`
	Event         *Event     `json:"event"`
	Gender        string     `json:"gender"`
	Overs         *int       `json:"overs"`
	BallsPerOver  *int       `json:"balls_per_over"`
	Teams         []string   `json:"teams"`
	Outcome       Outcome    `json:"outcome"`
	Toss          Toss       `json:"toss"`
	PlayerOfMatch []string   `json:"player_of_match"`
	Officials     Officials  `json:"officials"`
	Registry      Registry   `json:"registry"`
}

type Event struct {
	Name        string `json:"name"`
	MatchNumber *int   `json:"match_number"`
	Stage       string `json:"stage"`
}

type Outcome struct {
	Winner     string `json:"winner"`
	By         WinBy  `json:"by"`
	Method     string `json:"method"`
	Result     string `json:"result"` // "tie", "no result", "draw"; empty for a decided match
	Eliminator string `json:"eliminator"`
}

type WinBy struct {
	Runs    *int `json:"runs"`
	Wickets *int `json:"wickets"`
	Innings *int `json:"innings"`
}

type Toss struct {
	Winner   string `json:"winner"`
	Decision string `json:"decision"`
}

type Officials struct {
	Umpires        []string `json:"umpires"`
	MatchReferees  []string `json:"match_referees"`
	TVUmpires      []string `json:"tv_umpires"`
	ReserveUmpires []string `json:"reserve_umpires"`
}

// Registry carries stable player identifiers keyed by display name.
type Registry struct {
	People map[string]string `json:"people"`
}

type Innings struct {
	Team      string  `json:"team"`
	Overs     []Over  `json:"overs"`
	Target    *Target `json:"target"`
	SuperOver bool    `json:"super_over"`
}

type Target struct {
	Runs  *int     `json:"runs"`
	Overs *float64 `json:"overs"`
}

type Over struct {
	Over       int        `json:"over"`
	Deliveries []Delivery `json:"deliveries"`
}

type Delivery struct {
	Batter     string         `json:"batter"`
	Bowler     string         `json:"bowler"`
	NonStriker string         `json:"non_striker"`
	Runs       Runs           `json:"runs"`
	Extras     map[string]int `json:"extras"`
	Wickets    []Wicket       `json:"wickets"`
}

type Runs struct {
	Batter int `json:"batter"`
	Extras int `json:"extras"`
	Total  int `json:"total"`
}

type Wicket struct {
	Kind      string    `json:"kind"`
	PlayerOut string    `json:"player_out"`
	Fielders  []Fielder `json:"fielders"`
}

type Fielder struct {
	Name       string `json:"name"`
	Substitute bool   `json:"substitute"`
}

// FlexString accepts either a JSON string or a number. Older files store the
// season as 2008, newer ones as "2007/08".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}
	if trimmed[0] == '"' {
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	num := string(trimmed)
	if _, err := strconv.ParseFloat(num, 64); err != nil {
		return fmt.Errorf("season: want string or number, got %s", num)
	}
	if i, err := strconv.ParseInt(num, 10, 64); err == nil {
		num = strconv.FormatInt(i, 10)
	}
	*s = FlexString(num)
	return nil
}

// Decode parses one raw record.
func Decode(data []byte) (Match, error) {
	var m Match
	if err := json.Unmarshal(data, &m); err != nil {
		return Match{}, fmt.Errorf("decode cricsheet match: %w", err)
	}
	return m, nil
}
