package punch

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
	"github.com/stretchr/testify/assert"
)

func span(start, end string) punch.Punch {
	p := punch.Punch{Start: timeofday.MustParse(start)}
	if end != "" {
		p.End = timeofday.Ptr(timeofday.MustParse(end))
	}
	return p
}

func candidate(start, end string) punch.Candidate {
	c := punch.Candidate{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Start: timeofday.MustParse(start)}
	if end != "" {
		c.End = timeofday.Ptr(timeofday.MustParse(end))
	}
	return c
}

func TestValidateCandidate(t *testing.T) {
	morning := []punch.Punch{span("09:00", "12:00")}

	cases := []struct {
		name   string
		active []punch.Punch
		cand   punch.Candidate
		want   error
	}{
		{"empty day", nil, candidate("09:00", ""), nil},
		{"end not after start", nil, candidate("09:00", "09:00"), punch.ErrEndBeforeStart},
		{"open punch blocks everything", []punch.Punch{span("09:00", "")}, candidate("13:00", "14:00"), punch.ErrOpenPunchExists},
		{"open punch checked before ordering", []punch.Punch{span("15:00", "")}, candidate("08:00", ""), punch.ErrOpenPunchExists},
		{"automatic punch before existing", morning, candidate("08:00", ""), punch.ErrLaterPunchExists},
		{"automatic punch at same start", morning, candidate("09:00", ""), punch.ErrLaterPunchExists},
		{"automatic punch inside", morning, candidate("10:00", ""), punch.ErrStartInsidePunch},
		{"automatic punch at end boundary", morning, candidate("12:00", ""), punch.ErrStartInsidePunch},
		{"automatic punch after", morning, candidate("13:00", ""), nil},
		{"closed punch starting inside", morning, candidate("11:00", "13:00"), punch.ErrStartInsidePunch},
		{"closed punch crossing start", morning, candidate("08:00", "09:30"), punch.ErrOverlappingPunch},
		{"closed punch ending at start", morning, candidate("08:00", "09:00"), punch.ErrOverlappingPunch},
		{"closed punch enclosing", morning, candidate("08:00", "13:00"), punch.ErrOverlappingPunch},
		{"closed punch before", morning, candidate("07:00", "08:00"), nil},
		{"closed punch after", morning, candidate("12:30", "13:00"), nil},
		{"closed punch earlier than later one", morning, candidate("07:00", "08:30"), nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validateCandidate(c.cand, c.active)
			if c.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "overlap", rejectionReason(punch.ErrOverlappingPunch))
	assert.Equal(t, "no_window", rejectionReason(schedule.ErrNoWindowAvailable.Detailf("none on Monday")))
	assert.Equal(t, "other", rejectionReason(assert.AnError))
}
