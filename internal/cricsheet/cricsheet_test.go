package cricsheet_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-stats-service/internal/cricsheet"
)

func TestFlexString(t *testing.T) {
	cases := map[string]string{
		`{"info": {"season": 2008}}`:      "2008",
		`{"info": {"season": "2007/08"}}`: "2007/08",
		`{"info": {"season": null}}`:      "",
		`{"info": {}}`:                    "",
	}
	for in, want := range cases {
		m, err := cricsheet.Decode([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, string(m.Info.Season), in)
	}

	_, err := cricsheet.Decode([]byte(`{"info": {"season": true}}`))
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	data := []byte(`{
  "info": {
    "teams": ["Kolkata Knight Riders", "Royal Challengers Bangalore"],
    "dates": ["2008-04-18"],
    "event": {"name": "Indian Premier League", "match_number": 1},
    "outcome": {"winner": "Kolkata Knight Riders", "by": {"runs": 140}},
    "registry": {"people": {"SC Ganguly": "ae7a2f3a"}}
  },
  "innings": [{
    "team": "Kolkata Knight Riders",
    "overs": [{"over": 0, "deliveries": [
      {"batter": "SC Ganguly", "bowler": "P Kumar", "non_striker": "BB McCullum",
       "runs": {"batter": 0, "extras": 1, "total": 1}, "extras": {"legbyes": 1}}
    ]}]
  }, {
    "team": "Royal Challengers Bangalore",
    "target": {"overs": 20, "runs": 223},
    "overs": []
  }]
}`)
	m, err := cricsheet.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Kolkata Knight Riders", "Royal Challengers Bangalore"}, m.Info.Teams)
	require.NotNil(t, m.Info.Event)
	require.NotNil(t, m.Info.Event.MatchNumber)
	assert.Equal(t, 1, *m.Info.Event.MatchNumber)
	require.NotNil(t, m.Info.Outcome.By.Runs)
	assert.Equal(t, 140, *m.Info.Outcome.By.Runs)
	assert.Equal(t, "ae7a2f3a", m.Info.Registry.People["SC Ganguly"])

	require.Len(t, m.Innings, 2)
	d := m.Innings[0].Overs[0].Deliveries[0]
	assert.Equal(t, "BB McCullum", d.NonStriker)
	assert.Equal(t, map[string]int{"legbyes": 1}, d.Extras)
	require.NotNil(t, m.Innings[1].Target)
	assert.Equal(t, 223, *m.Innings[1].Target.Runs)

	_, err = cricsheet.Decode([]byte(`[`))
	assert.Error(t, err)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"1002.json": `{"b":1}`,
		"1001.json": `{"a":1}`,
		"README.md": "ignored",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o700))

	src, err := cricsheet.OpenDir(dir, "", zerolog.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, 2, src.Len())

	ctx := context.Background()
	r1, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1001", r1.ExternalID)
	assert.Equal(t, `{"a":1}`, string(r1.Data))

	r2, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1002", r2.ExternalID)

	_, err = src.Next(ctx)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestDirSource_Empty(t *testing.T) {
	src, err := cricsheet.OpenDir(t.TempDir(), ".json", zerolog.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, 0, src.Len())
	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestDirSource_MissingDir(t *testing.T) {
	_, err := cricsheet.OpenDir(filepath.Join(t.TempDir(), "nope"), ".json", zerolog.New(io.Discard))
	assert.Error(t, err)
}

func TestSliceSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cricsheet.NewSliceSource(cricsheet.Record{ExternalID: "1"}).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
