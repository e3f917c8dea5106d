package leave

import (
	"strings"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
)

// ========================================
// APPLICATION DTOs
// ========================================

type ApplyLeaveRequest struct {
	ResidentID string `json:"-"`
	LeaveType  string `json:"leave_type"`
	OutDate    string `json:"out_date"` // YYYY-MM-DD
	OutTime    string `json:"out_time"` // HH:MM
	InDate     string `json:"in_date"`  // YYYY-MM-DD
	InTime     string `json:"in_time"`  // HH:MM
	Reason     string `json:"reason"`

	outDate time.Time
	inDate  time.Time
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ResidentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "resident_id",
			Message: "resident_id is required",
		})
	}

	if !LeaveType(r.LeaveType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: Leave, General Leave, Emergency, Outing",
		})
	}

	outDate, validOutDate := validator.IsValidDate(r.OutDate)
	if !validOutDate {
		errs = append(errs, validator.ValidationError{
			Field:   "out_date",
			Message: "out_date must be in YYYY-MM-DD format",
		})
	}
	inDate, validInDate := validator.IsValidDate(r.InDate)
	if !validInDate {
		errs = append(errs, validator.ValidationError{
			Field:   "in_date",
			Message: "in_date must be in YYYY-MM-DD format",
		})
	}

	validOutTime := validator.IsValidClock(r.OutTime)
	if !validOutTime {
		errs = append(errs, validator.ValidationError{
			Field:   "out_time",
			Message: "out_time must be in HH:MM format",
		})
	}
	validInTime := validator.IsValidClock(r.InTime)
	if !validInTime {
		errs = append(errs, validator.ValidationError{
			Field:   "in_time",
			Message: "in_time must be in HH:MM format",
		})
	}

	if validOutDate && validInDate && validOutTime && validInTime {
		departure := clock.At(outDate, r.OutTime, time.UTC)
		deadline := clock.At(inDate, r.InTime, time.UTC)
		if !deadline.After(departure) {
			errs = append(errs, validator.ValidationError{
				Field:   "in_date",
				Message: "return must be after departure",
			})
		}
	}

	r.Reason = strings.TrimSpace(r.Reason)
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.outDate = outDate
	r.inDate = inDate
	return nil
}

// Dates returns the parsed departure and return dates. Valid after Validate succeeds.
func (r ApplyLeaveRequest) Dates() (outDate, inDate time.Time) {
	return r.outDate, r.inDate
}

// ========================================
// APPROVAL DTOs
// ========================================

type ReviewRequest struct {
	LeaveID string `json:"-"`
	Status  string `json:"status"` // Approved or Rejected
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_id",
			Message: "leave_id is required",
		})
	}

	if r.Status != string(ApprovalApproved) && r.Status != string(ApprovalRejected) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Approved, Rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SearchRequest struct {
	Query string `json:"query"` // roll/register/approval number fragment, or ALL
}

func (r *SearchRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Query = strings.TrimSpace(r.Query)
	if validator.IsEmpty(r.Query) {
		errs = append(errs, validator.ValidationError{
			Field:   "query",
			Message: "query is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsAll reports whether the warden asked for every pending leave.
func (r SearchRequest) IsAll() bool {
	return r.Query == "ALL"
}

type WithdrawRequest struct {
	LeaveID string `json:"-"`
	// ResidentID restricts the withdrawal to the owner. Nil for wardens.
	ResidentID *string `json:"-"`
}

// ========================================
// OUTPASS DTOs
// ========================================

type GenerateOutpassRequest struct {
	LeaveID string `json:"-"`
	// ResidentID restricts generation to the leave's owner. Nil skips the check.
	ResidentID *string `json:"-"`
	Type       string  `json:"type"` // Digital or Physical
}

func (r *GenerateOutpassRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_id",
			Message: "leave_id is required",
		})
	}

	if r.Type != string(OutpassDigital) && r.Type != string(OutpassPhysical) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: Digital, Physical",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TriggerPhysicalOutpassRequest struct {
	RollNo string `json:"roll_no"`
}

func (r *TriggerPhysicalOutpassRequest) Validate() error {
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

// PrintPayload is what the kiosk printer receives for a physical outpass.
type PrintPayload struct {
	Name    string `json:"name"`
	RollNo  string `json:"roll_no"`
	OutDate string `json:"out_date"`
	OutTime string `json:"out_time"`
	InDate  string `json:"in_date"`
	InTime  string `json:"in_time"`
	PassID  string `json:"pass_id"`
}

// ========================================
// RESPONSES
// ========================================

type LeaveResponse struct {
	ID                 string  `json:"id"`
	ResidentID         string  `json:"resident_id"`
	ResidentName       *string `json:"resident_name,omitempty"`
	ResidentRollNo     *string `json:"resident_roll_no,omitempty"`
	LeaveType          string  `json:"leave_type"`
	OutDate            string  `json:"out_date"`
	OutTime            string  `json:"out_time"`
	InDate             string  `json:"in_date"`
	InTime             string  `json:"in_time"`
	Reason             string  `json:"reason"`
	WardenStatus       string  `json:"warden_status"`
	ParentStatus       string  `json:"parent_status"`
	OutpassType        string  `json:"outpass_type"`
	OutpassStatus      string  `json:"outpass_status"`
	OutpassGeneratedAt *string `json:"outpass_generated_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

func NewLeaveResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:             l.ID,
		ResidentID:     l.ResidentID,
		ResidentName:   l.ResidentName,
		ResidentRollNo: l.ResidentRollNo,
		LeaveType:      string(l.Type),
		OutDate:        l.OutDate.Format(clock.DateLayout),
		OutTime:        l.OutTime,
		InDate:         l.InDate.Format(clock.DateLayout),
		InTime:         l.InTime,
		Reason:         l.Reason,
		WardenStatus:   string(l.WardenStatus),
		ParentStatus:   string(l.ParentStatus),
		OutpassType:    string(l.OutpassType),
		OutpassStatus:  string(l.OutpassStatus),
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.OutpassGeneratedAt != nil {
		s := l.OutpassGeneratedAt.Format(time.RFC3339)
		resp.OutpassGeneratedAt = &s
	}
	return resp
}

type OutpassResponse struct {
	Message string        `json:"message"`
	Leave   LeaveResponse `json:"leave"`

	Events []event.Event `json:"-"`
}

type PhysicalOutpassResponse struct {
	Message    string       `json:"message"`
	PrintData  PrintPayload `json:"print_data"`
	PrintError *string      `json:"print_error,omitempty"`

	Events []event.Event `json:"-"`
}
