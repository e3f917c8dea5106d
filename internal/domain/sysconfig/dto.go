package sysconfig

import (
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
)

type UpdateConfigRequest struct {
	AttendanceStart *string `json:"attendance_start,omitempty"`
	AttendanceEnd   *string `json:"attendance_end,omitempty"`
	CollegeEndTime  *string `json:"college_end_time,omitempty"`
	CurfewTime      *string `json:"curfew_time,omitempty"`
	DailyResetTime  *string `json:"daily_reset_time,omitempty"`
}

func (r *UpdateConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	fields := []struct {
		name  string
		value *string
	}{
		{"attendance_start", r.AttendanceStart},
		{"attendance_end", r.AttendanceEnd},
		{"college_end_time", r.CollegeEndTime},
		{"curfew_time", r.CurfewTime},
		{"daily_reset_time", r.DailyResetTime},
	}

	set := 0
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		set++
		if !validator.IsValidClock(*f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be in HH:MM format",
			})
		}
	}

	if set == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r UpdateConfigRequest) Patch() Patch {
	return Patch{
		AttendanceStart: r.AttendanceStart,
		AttendanceEnd:   r.AttendanceEnd,
		CollegeEndTime:  r.CollegeEndTime,
		CurfewTime:      r.CurfewTime,
		DailyResetTime:  r.DailyResetTime,
	}
}

type ConfigResponse struct {
	AttendanceStart   string `json:"attendance_start"`
	AttendanceEnd     string `json:"attendance_end"`
	CollegeEndTime    string `json:"college_end_time"`
	CurfewTime        string `json:"curfew_time"`
	DailyResetTime    string `json:"daily_reset_time"`
	LastResetDate     string `json:"last_reset_date"`
	LastAutoBlockDate string `json:"last_auto_block_date"`
	UpdatedAt         string `json:"updated_at,omitempty"`

	SpecialFood SpecialFoodResponse `json:"special_food"`

	Events []event.Event `json:"-"`
}

func NewConfigResponse(s Snapshot) ConfigResponse {
	resp := ConfigResponse{
		AttendanceStart:   s.AttendanceStart,
		AttendanceEnd:     s.AttendanceEnd,
		CollegeEndTime:    s.CollegeEndTime,
		CurfewTime:        s.CurfewTime,
		DailyResetTime:    s.DailyResetTime,
		LastResetDate:     s.LastResetDate,
		LastAutoBlockDate: s.LastAutoBlockDate,
		SpecialFood:       NewSpecialFoodResponse(s.SpecialFood),
	}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

type SpecialFoodResponse struct {
	Name          string `json:"name"`
	Session       string `json:"session"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	ProvidingDate string `json:"providing_date"`
}

func NewSpecialFoodResponse(f SpecialFood) SpecialFoodResponse {
	return SpecialFoodResponse{
		Name:          f.Name,
		Session:       string(f.Session),
		Date:          f.Date,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		ProvidingDate: f.ProvidingDate,
	}
}
