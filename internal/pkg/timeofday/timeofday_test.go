package timeofday

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"09:00", "09:00:00", true},
		{"17:30:15", "17:30:15", true},
		{"00:00", "00:00:00", true},
		{"24:00", "", false},
		{"9am", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		if !c.ok {
			assert.Error(t, err, c.input)
			continue
		}
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got.String())
	}
}

func TestCompareAndSub(t *testing.T) {
	start := New(9, 0, 0)
	end := MustParse("13:30")

	assert.True(t, start.Before(end))
	assert.True(t, end.After(start))
	assert.False(t, start.Equal(end))
	assert.Equal(t, 4*time.Hour+30*time.Minute, end.Sub(start))
}

func TestOfAndOn(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 4, 9, 1, 30, 0, loc)

	tod := Of(ts)
	assert.Equal(t, "09:01:30", tod.String())
	assert.True(t, ts.Equal(tod.On(ts, loc)))
}

func TestOnKeepsWallClockAcrossDaylightSaving(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	cases := []struct {
		name string
		date time.Time
		tod  string
		want time.Time
	}{
		{"spring forward", time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC), "09:30", time.Date(2026, 3, 29, 9, 30, 0, 0, madrid)},
		{"fall back", time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), "17:45:10", time.Date(2026, 10, 25, 17, 45, 10, 0, madrid)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MustParse(tc.tod).On(tc.date, madrid)
			assert.True(t, tc.want.Equal(got), "got %s", got)
			assert.Equal(t, tc.tod, Of(got).String()[:len(tc.tod)])
		})
	}
}

func TestPGRoundTrip(t *testing.T) {
	tod := MustParse("08:15")
	assert.Equal(t, tod, FromPG(tod.PG()))

	assert.False(t, PGPtr(nil).Valid)
	assert.Nil(t, FromPGPtr(PGPtr(nil)))
	assert.Equal(t, tod, *FromPGPtr(PGPtr(&tod)))
}

func TestJSON(t *testing.T) {
	var payload struct {
		Start Time  `json:"start"`
		End   *Time `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"09:00","end":null}`), &payload))
	assert.Equal(t, "09:00:00", payload.Start.String())
	assert.Nil(t, payload.End)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"09:00:00","end":null}`, string(out))
}
