package fixtures

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/timeofday"
)

// ==========================================
// DEMO USERS
// ==========================================

// DefaultUsers returns one user per role, used to seed a development store.
func DefaultUsers() []user.User {
	return []user.User{
		{ID: 1, Name: "Admin", Role: user.RoleAdmin},
		{ID: 2, Name: "Supervisor", Role: user.RoleSupervisor},
		{ID: 3, Name: "Registrar", Role: user.RoleRegistrar},
		{ID: 4, Name: "Employee", Role: user.RoleEmployee},
	}
}

// ==========================================
// SCHEDULES
// ==========================================

type windowDef struct {
	start string
	end   string
}

// Standard Office Hours with a lunch break
var standardOfficeHours = []windowDef{
	{start: "09:00", end: "12:00"},
	{start: "13:00", end: "17:00"},
}

// StandardOfficeWindows returns the Monday to Friday office windows.
func StandardOfficeWindows() []schedule.Window {
	var windows []schedule.Window
	for day := time.Monday; day <= time.Friday; day++ {
		for _, def := range standardOfficeHours {
			windows = append(windows, schedule.Window{
				Weekday: day,
				Start:   timeofday.MustParse(def.start),
				End:     timeofday.MustParse(def.end),
			})
		}
	}
	return windows
}

// DefaultSet builds the standard office schedule of userID, applying to
// dates after effectiveFrom.
func DefaultSet(userID int64, effectiveFrom time.Time) schedule.Set {
	y, m, d := effectiveFrom.Date()
	return schedule.Set{
		UserID:        userID,
		EffectiveFrom: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Windows:       StandardOfficeWindows(),
	}
}
