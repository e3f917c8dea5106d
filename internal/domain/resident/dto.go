package resident

import (
	"strings"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// MarkAttendanceRequest is a fingerprint scan event from a kiosk.
type MarkAttendanceRequest struct {
	RollNo string `json:"roll_no"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	r.RollNo = strings.TrimSpace(r.RollNo)
	if validator.IsEmpty(r.RollNo) {
		errs = append(errs, validator.ValidationError{
			Field:   "roll_no",
			Message: "roll_no is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

const (
	OutcomePresent = "Present"
	OutcomeBlocked = "Blocked"
)

type MarkAttendanceResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	IsBlocked *bool  `json:"is_blocked,omitempty"`
	// Unverified is set when a resident marked Out returned without an approved leave on record.
	Unverified bool `json:"unverified,omitempty"`

	Events []event.Event `json:"-"`
}

// ========================================
// ADMINISTRATION DTOs
// ========================================

type RegisterResidentRequest struct {
	RollNo        string  `json:"roll_no"`
	Name          string  `json:"name"`
	RegisterNo    *string `json:"register_no,omitempty"`
	ApprovalNo    *string `json:"approval_no,omitempty"`
	HostelName    *string `json:"hostel_name,omitempty"`
	RoomNo        *string `json:"room_no,omitempty"`
	FingerprintID *string `json:"fingerprint_id,omitempty"`
}

func (r *RegisterResidentRequest) Validate() error {
	var errs validator.ValidationErrors

	r.RollNo = strings.TrimSpace(r.RollNo)
	r.Name = strings.TrimSpace(r.Name)

	if validator.IsEmpty(r.RollNo) {
		errs = append(errs, validator.ValidationError{
			Field:   "roll_no",
			Message: "roll_no is required",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SetBlockedRequest struct {
	ID        string `json:"-"`
	IsBlocked *bool  `json:"is_blocked"`
}

func (r *SetBlockedRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "resident id is required",
		})
	}
	if r.IsBlocked == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "is_blocked",
			Message: "is_blocked is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListResidentsRequest struct {
	Status    *string `json:"status,omitempty"`
	IsBlocked *bool   `json:"is_blocked,omitempty"`
	Search    *string `json:"search,omitempty"`
}

func (r *ListResidentsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != nil && !AttendanceStatus(*r.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Present, Absent, Out",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Filter converts the query into a store filter.
func (r ListResidentsRequest) Filter() Filter {
	f := Filter{IsBlocked: r.IsBlocked, Search: r.Search}
	if r.Status != nil {
		f.Statuses = []AttendanceStatus{AttendanceStatus(*r.Status)}
	}
	return f
}

type ResidentResponse struct {
	ID               string  `json:"id"`
	RollNo           string  `json:"roll_no"`
	Name             string  `json:"name"`
	RegisterNo       *string `json:"register_no,omitempty"`
	ApprovalNo       *string `json:"approval_no,omitempty"`
	HostelName       *string `json:"hostel_name,omitempty"`
	RoomNo           *string `json:"room_no,omitempty"`
	AttendanceStatus string  `json:"attendance_status"`
	IsBlocked        bool    `json:"is_blocked"`
	LastAttendanceAt *string `json:"last_attendance_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func NewResidentResponse(r Resident) ResidentResponse {
	resp := ResidentResponse{
		ID:               r.ID,
		RollNo:           r.RollNo,
		Name:             r.Name,
		RegisterNo:       r.RegisterNo,
		ApprovalNo:       r.ApprovalNo,
		HostelName:       r.HostelName,
		RoomNo:           r.RoomNo,
		AttendanceStatus: string(r.AttendanceStatus),
		IsBlocked:        r.IsBlocked,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.LastAttendanceAt != nil {
		s := r.LastAttendanceAt.Format(time.RFC3339)
		resp.LastAttendanceAt = &s
	}
	return resp
}

type BulkResult struct {
	Count   int64  `json:"count"`
	Message string `json:"message"`

	Events []event.Event `json:"-"`
}

type BlockStatusResponse struct {
	Message  string           `json:"message"`
	Resident ResidentResponse `json:"resident"`

	Events []event.Event `json:"-"`
}
