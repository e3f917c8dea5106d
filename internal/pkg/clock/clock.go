package clock

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DateLayout is the calendar date format used for idempotency markers.
	DateLayout = "2006-01-02"

	minutesPerDay = 24 * 60
)

// Clock is the time source used by the rule services.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// System reads the wall clock and reports it in a fixed location.
type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{loc: loc}
}

func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

func (s *System) Location() *time.Location {
	return s.loc
}

// Manual is a settable clock for tests and replays.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Location() *time.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now.Location()
}

func (m *Manual) Set(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// TimeToMinutes converts "HH:MM" into minutes after midnight.
// Empty or malformed input yields 0, which callers treat as midnight.
func TimeToMinutes(s string) int {
	minutes, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return minutes
}

// ParseClock is the strict form of TimeToMinutes used for input validation.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || len(m) != 2 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// InWindow reports whether now lies in [start, end], all in minutes of day.
// An end of 0 means a window configured to close at 00:00, so it is read as
// the end of the day instead of its start.
func InWindow(now, start, end int) bool {
	return now >= start && now <= closing(end)
}

// ClosingMinutes converts a closing time such as a window end or a curfew.
// "00:00" closes at the end of the day, so it yields 1440.
func ClosingMinutes(s string) int {
	return closing(TimeToMinutes(s))
}

func closing(minutes int) int {
	if minutes == 0 {
		return minutesPerDay
	}
	return minutes
}

// MinuteOfDay returns t's minutes after midnight in t's location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DateString formats t's calendar date in t's location.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// At combines the calendar date of day with an "HH:MM" time of day in loc.
// Only the year, month and day of day are used, whatever its location.
func At(day time.Time, hhmm string, loc *time.Location) time.Time {
	minutes := TimeToMinutes(hhmm)
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc)
}
