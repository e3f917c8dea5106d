package leave

import (
	"strings"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
)

type LeaveType string

const (
	TypeLeave        LeaveType = "Leave"
	TypeGeneralLeave LeaveType = "General Leave"
	TypeEmergency    LeaveType = "Emergency"
	TypeOuting       LeaveType = "Outing"
)

func (t LeaveType) Valid() bool {
	switch t {
	case TypeLeave, TypeGeneralLeave, TypeEmergency, TypeOuting:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

type OutpassType string

const (
	OutpassNone     OutpassType = "None"
	OutpassDigital  OutpassType = "Digital"
	OutpassPhysical OutpassType = "Physical"
)

type OutpassStatus string

const (
	OutpassOpen   OutpassStatus = "Open"
	OutpassClosed OutpassStatus = "Closed"
)

// Leave entity
type Leave struct {
	ID         string
	ResidentID string
	Type       LeaveType

	// OutDate and InDate carry only a calendar date; the time of day lives in OutTime/InTime (HH:MM).
	OutDate time.Time
	OutTime string
	InDate  time.Time
	InTime  string
	Reason  string

	WardenStatus ApprovalStatus
	ParentStatus ApprovalStatus

	// OutpassType is write-once: None -> Digital or None -> Physical.
	OutpassType        OutpassType
	OutpassStatus      OutpassStatus
	OutpassGeneratedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	ResidentName   *string
	ResidentRollNo *string
}

// DepartureAt is the declared departure instant in loc.
func (l Leave) DepartureAt(loc *time.Location) time.Time {
	return clock.At(l.OutDate, l.OutTime, loc)
}

// ReturnDeadline is the declared return instant in loc.
func (l Leave) ReturnDeadline(loc *time.Location) time.Time {
	return clock.At(l.InDate, l.InTime, loc)
}

// ReturnOverdue reports whether now is strictly past the return deadline.
// Both the scan path and the heartbeat use this predicate.
func (l Leave) ReturnOverdue(now time.Time) bool {
	return now.After(l.ReturnDeadline(now.Location()))
}

func (l Leave) FullyApproved() bool {
	return l.WardenStatus == ApprovalApproved && l.ParentStatus == ApprovalApproved
}

func (l Leave) HasOutpass() bool {
	return l.OutpassType != "" && l.OutpassType != OutpassNone
}

// IssueOutpass checks the outpass preconditions in order and, when they all
// hold, records an open outpass of type t issued at now.
func (l *Leave) IssueOutpass(t OutpassType, now time.Time) error {
	if l.HasOutpass() {
		return ErrOutpassAlreadyGenerated
	}
	if l.ParentStatus != ApprovalApproved {
		return ErrParentApprovalRequired
	}
	if now.Before(l.DepartureAt(now.Location())) {
		return ErrOutpassTooEarly
	}

	l.OutpassType = t
	l.OutpassStatus = OutpassOpen
	l.OutpassGeneratedAt = &now
	return nil
}

func (l *Leave) CloseOutpass() {
	l.OutpassStatus = OutpassClosed
}

// Withdrawable reports whether the application may still be deleted.
func (l Leave) Withdrawable() bool {
	return l.ParentStatus == ApprovalPending && !l.HasOutpass()
}

// PassID is the short identifier printed on physical outpasses.
func (l Leave) PassID() string {
	id := strings.ReplaceAll(l.ID, "-", "")
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

// SearchFilter selects leaves for the warden search. A nil ResidentIDs matches every resident.
type SearchFilter struct {
	ResidentIDs  []string
	WardenStatus *ApprovalStatus
}
