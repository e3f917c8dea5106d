package resident

import (
	"strings"
	"time"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	// StatusOut means the resident left on an outpass and has not scanned back in.
	StatusOut AttendanceStatus = "Out"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusOut:
		return true
	}
	return false
}

// Resident entity
type Resident struct {
	ID               string
	RollNo           string
	Name             string
	RegisterNo       *string
	ApprovalNo       *string
	HostelName       *string
	RoomNo           *string
	FingerprintID    *string
	AttendanceStatus AttendanceStatus
	// IsBlocked is sticky: attendance transitions never clear it.
	IsBlocked        bool
	LastAttendanceAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PresentPatch marks a resident Present as of now. It never touches IsBlocked.
func PresentPatch(now time.Time) Patch {
	status := StatusPresent
	return Patch{AttendanceStatus: &status, LastAttendanceAt: &now}
}

// Filter selects residents for list and bulk operations. Nil or empty fields match anything.
type Filter struct {
	IDs             []string
	Statuses        []AttendanceStatus
	ExcludeStatuses []AttendanceStatus
	IsBlocked       *bool
	Search          *string
}

// Patch describes a set-based update. Nil fields are left untouched.
type Patch struct {
	AttendanceStatus *AttendanceStatus
	IsBlocked        *bool
	LastAttendanceAt *time.Time
	// ClearLastAttendance wins over LastAttendanceAt.
	ClearLastAttendance bool
}

func (p Patch) Empty() bool {
	return p.AttendanceStatus == nil && p.IsBlocked == nil && p.LastAttendanceAt == nil && !p.ClearLastAttendance
}

// Matches reports whether r satisfies f. Stores without a query language use it
// to evaluate filters the same way the SQL repository does.
func (f Filter) Matches(r Resident) bool {
	if len(f.IDs) > 0 && !contains(f.IDs, r.ID) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.AttendanceStatus) {
		return false
	}
	if len(f.ExcludeStatuses) > 0 && containsStatus(f.ExcludeStatuses, r.AttendanceStatus) {
		return false
	}
	if f.IsBlocked != nil && r.IsBlocked != *f.IsBlocked {
		return false
	}
	if f.Search != nil && !r.matchesSearch(*f.Search) {
		return false
	}
	return true
}

// Apply writes p onto r.
func (p Patch) Apply(r *Resident) {
	if p.AttendanceStatus != nil {
		r.AttendanceStatus = *p.AttendanceStatus
	}
	if p.IsBlocked != nil {
		r.IsBlocked = *p.IsBlocked
	}
	if p.LastAttendanceAt != nil {
		t := *p.LastAttendanceAt
		r.LastAttendanceAt = &t
	}
	if p.ClearLastAttendance {
		r.LastAttendanceAt = nil
	}
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

func containsStatus(items []AttendanceStatus, v AttendanceStatus) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

func (r Resident) matchesSearch(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	fields := []string{r.RollNo, r.Name}
	for _, p := range []*string{r.RegisterNo, r.ApprovalNo} {
		if p != nil {
			fields = append(fields, *p)
		}
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
