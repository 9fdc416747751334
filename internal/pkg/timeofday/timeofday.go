// Package timeofday represents a wall-clock time without a date, the shape
// of schedule windows and punch boundaries.
package timeofday

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	microsPerSecond = int64(1_000_000)
	microsPerDay    = 24 * 60 * 60 * microsPerSecond
)

// Time is a time of day with microsecond precision, matching PostgreSQL's
// time type.
type Time struct {
	micros int64
}

func New(hour, minute, second int) Time {
	return Time{micros: (int64(hour)*3600 + int64(minute)*60 + int64(second)) * microsPerSecond}
}

// Of returns the time-of-day component of t in t's location.
func Of(t time.Time) Time {
	h, m, s := t.Clock()
	tod := New(h, m, s)
	tod.micros += int64(t.Nanosecond()) / 1000
	return tod
}

var layouts = []string{"15:04:05", "15:04"}

// Parse accepts "HH:MM" or "HH:MM:SS".
func Parse(s string) (Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Of(t), nil
		}
	}
	return Time{}, fmt.Errorf("invalid time of day %q", s)
}

func MustParse(s string) Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Time) Before(u Time) bool { return t.micros < u.micros }

func (t Time) After(u Time) bool { return t.micros > u.micros }

func (t Time) Equal(u Time) bool { return t.micros == u.micros }

// Sub returns the duration t-u.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(t.micros-u.micros) * time.Microsecond
}

// On combines the time of day with the calendar date of d in loc. The wall
// clock is set field by field, so days with a daylight-saving transition
// keep the same reading.
func (t Time) On(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	secs := t.micros / microsPerSecond
	nsec := int(t.micros%microsPerSecond) * 1000
	return time.Date(y, m, day, int(secs/3600), int(secs/60%60), int(secs%60), nsec, loc)
}

func (t Time) String() string {
	secs := t.micros / microsPerSecond
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// PG converts to the pgx representation.
func (t Time) PG() pgtype.Time {
	return pgtype.Time{Microseconds: t.micros, Valid: true}
}

// PGPtr converts an optional time of day, mapping nil to SQL NULL.
func PGPtr(t *Time) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return t.PG()
}

// FromPG converts a non-null pgx time.
func FromPG(p pgtype.Time) Time {
	return Time{micros: p.Microseconds % microsPerDay}
}

// FromPGPtr converts a nullable pgx time.
func FromPGPtr(p pgtype.Time) *Time {
	if !p.Valid {
		return nil
	}
	t := FromPG(p)
	return &t
}

// Ptr returns a pointer to a copy of t.
func Ptr(t Time) *Time { return &t }
