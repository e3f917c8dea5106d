package sysconfig

import (
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
)

// Key is the fixed primary key of the singleton configuration row.
const Key = "security_settings"

const (
	DefaultAttendanceStart = "19:00"
	DefaultAttendanceEnd   = "20:00"
	DefaultCollegeEndTime  = "16:00"
	DefaultCurfewTime      = "22:00"
	DefaultDailyResetTime  = "06:00"

	// EarliestOutingTime is the first minute of the day an outing may start.
	EarliestOutingTime = "06:00"
)

// Snapshot is a point-in-time copy of the hostel security settings. Rules take it by value.
type Snapshot struct {
	AttendanceStart string
	AttendanceEnd   string
	CollegeEndTime  string
	CurfewTime      string
	DailyResetTime  string

	// LastResetDate and LastAutoBlockDate are YYYY-MM-DD markers, empty until the job first runs.
	LastResetDate     string
	LastAutoBlockDate string

	SpecialFood SpecialFood

	UpdatedAt time.Time
}

func Defaults() Snapshot {
	return Snapshot{
		AttendanceStart: DefaultAttendanceStart,
		AttendanceEnd:   DefaultAttendanceEnd,
		CollegeEndTime:  DefaultCollegeEndTime,
		CurfewTime:      DefaultCurfewTime,
		DailyResetTime:  DefaultDailyResetTime,
		SpecialFood:     SpecialFood{Session: SessionNone},
	}
}

// AttendanceOpen reports whether now falls inside the attendance window.
func (s Snapshot) AttendanceOpen(now time.Time) bool {
	return clock.InWindow(clock.MinuteOfDay(now), clock.TimeToMinutes(s.AttendanceStart), clock.TimeToMinutes(s.AttendanceEnd))
}

// PastCurfew reports whether now is strictly after the curfew minute.
// A 00:00 curfew falls at the end of the day, so it is never passed.
func (s Snapshot) PastCurfew(now time.Time) bool {
	return clock.MinuteOfDay(now) > clock.ClosingMinutes(s.CurfewTime)
}

// PastAttendanceEnd reports whether now is strictly after the end of the attendance window.
func (s Snapshot) PastAttendanceEnd(now time.Time) bool {
	return clock.MinuteOfDay(now) > clock.ClosingMinutes(s.AttendanceEnd)
}

// ResetDue reports whether the daily reset has not yet run today and its hour has come.
func (s Snapshot) ResetDue(now time.Time) bool {
	return s.LastResetDate != clock.DateString(now) && clock.MinuteOfDay(now) >= clock.TimeToMinutes(s.DailyResetTime)
}

// AutoBlockDue reports whether today's auto-block has not yet run and the attendance window has closed.
func (s Snapshot) AutoBlockDue(now time.Time) bool {
	return s.LastAutoBlockDate != clock.DateString(now) && s.PastAttendanceEnd(now)
}

// Patch is an administrative update. Nil fields are left untouched.
type Patch struct {
	AttendanceStart *string
	AttendanceEnd   *string
	CollegeEndTime  *string
	CurfewTime      *string
	DailyResetTime  *string
}

func (p Patch) Apply(s *Snapshot) {
	if p.AttendanceStart != nil {
		s.AttendanceStart = *p.AttendanceStart
	}
	if p.AttendanceEnd != nil {
		s.AttendanceEnd = *p.AttendanceEnd
	}
	if p.CollegeEndTime != nil {
		s.CollegeEndTime = *p.CollegeEndTime
	}
	if p.CurfewTime != nil {
		s.CurfewTime = *p.CurfewTime
	}
	if p.DailyResetTime != nil {
		s.DailyResetTime = *p.DailyResetTime
	}
}

// MealSession names the mess meal a special dish is served at.
type MealSession string

const (
	SessionNone      MealSession = "None"
	SessionBreakfast MealSession = "Breakfast"
	SessionLunch     MealSession = "Lunch"
	SessionDinner    MealSession = "Dinner"
)

func (m MealSession) Valid() bool {
	switch m {
	case SessionNone, SessionBreakfast, SessionLunch, SessionDinner:
		return true
	}
	return false
}

// SpecialFood is the mess warden's announcement of a special dish and the window
// in which residents register for it.
type SpecialFood struct {
	Name    string
	Session MealSession
	// Date is the YYYY-MM-DD day registration is open.
	Date      string
	StartTime string
	EndTime   string
	// ProvidingDate is the YYYY-MM-DD day the dish is served.
	ProvidingDate string
}

// Scheduled reports whether a special dish is currently announced.
func (f SpecialFood) Scheduled() bool {
	return f.Session != "" && f.Session != SessionNone
}

// RegistrationOpen reports whether now falls on the registration date and inside
// [StartTime, EndTime]. A 00:00 end closes at the end of the day.
func (f SpecialFood) RegistrationOpen(now time.Time) bool {
	if !f.Scheduled() || clock.DateString(now) != f.Date {
		return false
	}
	return clock.InWindow(clock.MinuteOfDay(now), clock.TimeToMinutes(f.StartTime), clock.TimeToMinutes(f.EndTime))
}
