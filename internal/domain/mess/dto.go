package mess

import (
	"math"
	"strings"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
)

// ========================================
// SCHEDULE DTOs
// ========================================

type ScheduleSpecialFoodRequest struct {
	Name          string `json:"name"`
	Session       string `json:"session"`        // Breakfast, Lunch, Dinner or None
	Date          string `json:"date"`           // YYYY-MM-DD
	StartTime     string `json:"start_time"`     // HH:MM
	EndTime       string `json:"end_time"`       // HH:MM, 00:00 is end of day
	ProvidingDate string `json:"providing_date"` // YYYY-MM-DD, optional
}

func (r *ScheduleSpecialFoodRequest) Validate() error {
	var errs validator.ValidationErrors

	if !sysconfig.MealSession(r.Session).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "session",
			Message: "session must be one of: Breakfast, Lunch, Dinner, None",
		})
		return errs
	}
	if sysconfig.MealSession(r.Session) == sysconfig.SessionNone {
		return nil
	}

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsValidClock(r.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be in HH:MM format",
		})
	}
	if !validator.IsValidClock(r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be in HH:MM format",
		})
	}
	if r.ProvidingDate != "" {
		if _, ok := validator.IsValidDate(r.ProvidingDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "providing_date",
				Message: "providing_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SpecialFood converts the request. Cancelling with None clears the announcement.
func (r ScheduleSpecialFoodRequest) SpecialFood() sysconfig.SpecialFood {
	if sysconfig.MealSession(r.Session) == sysconfig.SessionNone {
		return sysconfig.SpecialFood{Session: sysconfig.SessionNone}
	}
	return sysconfig.SpecialFood{
		Name:          r.Name,
		Session:       sysconfig.MealSession(r.Session),
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		ProvidingDate: r.ProvidingDate,
	}
}

// ========================================
// TOKEN DTOs
// ========================================

type GenerateTokenRequest struct {
	ResidentID string `json:"-"`
	TokenType  string `json:"token_type"` // Digital or Manual
	// FoodName overrides the announced dish name when set.
	FoodName string `json:"food_name,omitempty"`
}

func (r *GenerateTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ResidentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "resident_id",
			Message: "resident_id is required",
		})
	}
	if !TokenType(r.TokenType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "token_type",
			Message: "token_type must be one of: Digital, Manual",
		})
	}
	r.FoodName = strings.TrimSpace(r.FoodName)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CloseTokenRequest struct {
	TokenID      string  `json:"-"`
	ClosedBy     string  `json:"-"`
	TotalSpent   float64 `json:"total_spent"`
	StudentCount int     `json:"student_count"`
}

func (r *CloseTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TokenID) {
		errs = append(errs, validator.ValidationError{
			Field:   "token_id",
			Message: "token_id is required",
		})
	}
	if r.TotalSpent < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "total_spent",
			Message: "total_spent must not be negative",
		})
	}
	if r.StudentCount <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "student_count",
			Message: "student_count must be greater than zero",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Price is each resident's share of the dish, rounded to paise.
func (r CloseTokenRequest) Price() float64 {
	return math.Round(r.TotalSpent/float64(r.StudentCount)*100) / 100
}

// ========================================
// RESPONSES
// ========================================

type SpecialFoodResponse struct {
	sysconfig.SpecialFoodResponse

	Events []event.Event `json:"-"`
}

type TokenResponse struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	ResidentID     string  `json:"resident_id"`
	ResidentName   *string `json:"resident_name,omitempty"`
	ResidentRollNo *string `json:"resident_roll_no,omitempty"`
	ResidentRoomNo *string `json:"resident_room_no,omitempty"`
	TokenType      string  `json:"token_type"`
	Status         string  `json:"status"`
	Price          float64 `json:"price"`
	FoodName       string  `json:"food_name"`
	Session        string  `json:"session"`
	ProvidingDate  string  `json:"providing_date,omitempty"`
	GeneratedAt    string  `json:"generated_at"`
	ClosedAt       *string `json:"closed_at,omitempty"`
	ClosedBy       *string `json:"closed_by,omitempty"`

	Events []event.Event `json:"-"`
}

func NewTokenResponse(t Token) TokenResponse {
	resp := TokenResponse{
		ID:             t.ID,
		Code:           t.Code,
		ResidentID:     t.ResidentID,
		ResidentName:   t.ResidentName,
		ResidentRollNo: t.ResidentRollNo,
		ResidentRoomNo: t.ResidentRoomNo,
		TokenType:      string(t.Type),
		Status:         string(t.Status),
		Price:          t.Price,
		FoodName:       t.FoodName,
		Session:        t.Session,
		ProvidingDate:  t.ProvidingDate,
		GeneratedAt:    t.GeneratedAt.Format(time.RFC3339),
		ClosedBy:       t.ClosedBy,
	}
	if t.ClosedAt != nil {
		s := t.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &s
	}
	return resp
}
