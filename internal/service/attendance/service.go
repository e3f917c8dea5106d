package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/metrics"
)

// Outcome labels for hms_attendance_marks_total.
const (
	outcomePresent      = "present"
	outcomeBlocked      = "blocked"
	outcomeReturned     = "returned"
	outcomeLateReturn   = "late_return"
	outcomeUnverified   = "unverified"
	outcomeWindowClosed = "window_closed"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	resident.ResidentRepository
	leave.LeaveRepository
	sysconfig.ConfigRepository
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewAttendanceService(
	tx database.Transactor,
	residentRepo resident.ResidentRepository,
	leaveRepo leave.LeaveRepository,
	configRepo sysconfig.ConfigRepository,
	clk clock.Clock,
	m *metrics.Metrics,
) resident.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                 tx,
		ResidentRepository: residentRepo,
		LeaveRepository:    leaveRepo,
		ConfigRepository:   configRepo,
		clock:              clk,
		metrics:            m,
	}
}

// MarkAttendance implements resident.AttendanceService.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req resident.MarkAttendanceRequest) (resident.MarkAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return resident.MarkAttendanceResponse{}, err
	}
	now := s.clock.Now()

	res, err := s.ResidentRepository.GetByRollNo(ctx, req.RollNo)
	if err != nil {
		if errors.Is(err, resident.ErrResidentNotFound) {
			return resident.MarkAttendanceResponse{}, err
		}
		return resident.MarkAttendanceResponse{}, fmt.Errorf("failed to get resident by roll number: %w", err)
	}

	if res.AttendanceStatus == resident.StatusOut {
		return s.markReturn(ctx, res, now)
	}

	// Global window enforcement. Nothing is written before this check.
	snap, err := s.ConfigRepository.Get(ctx)
	if err != nil {
		return resident.MarkAttendanceResponse{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if !snap.AttendanceOpen(now) {
		s.metrics.IncAttendanceMark(outcomeWindowClosed)
		return resident.MarkAttendanceResponse{}, resident.ErrAttendanceWindowClosed
	}

	if err := s.applyPatch(ctx, res.ID, resident.PresentPatch(now)); err != nil {
		return resident.MarkAttendanceResponse{}, err
	}

	events := []event.Event{censusEvent(res, resident.StatusPresent)}

	if res.IsBlocked {
		s.metrics.IncAttendanceMark(outcomeBlocked)
		blocked := true
		return resident.MarkAttendanceResponse{
			Status:    resident.OutcomePresent,
			Message:   "Attendance marked. Account remains blocked, contact the warden",
			IsBlocked: &blocked,
			Events:    events,
		}, nil
	}

	s.metrics.IncAttendanceMark(outcomePresent)
	return resident.MarkAttendanceResponse{
		Status:  resident.OutcomePresent,
		Message: "Attendance marked",
		Events:  events,
	}, nil
}

// markReturn handles a scan from a resident who left on an outpass.
func (s *AttendanceServiceImpl) markReturn(ctx context.Context, res resident.Resident, now time.Time) (resident.MarkAttendanceResponse, error) {
	approved, err := s.LeaveRepository.FindNewestApproved(ctx, res.ID)
	if err != nil {
		return resident.MarkAttendanceResponse{}, fmt.Errorf("failed to find approved leave: %w", err)
	}

	patch := resident.PresentPatch(now)
	late := approved != nil && approved.ReturnOverdue(now)
	if late {
		blocked := true
		patch.IsBlocked = &blocked
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if approved != nil {
			approved.CloseOutpass()
			if err := s.LeaveRepository.Update(ctx, *approved); err != nil {
				return fmt.Errorf("failed to close outpass: %w", err)
			}
		}
		return s.applyPatch(ctx, res.ID, patch)
	})
	if err != nil {
		return resident.MarkAttendanceResponse{}, err
	}

	if late {
		s.metrics.IncAttendanceMark(outcomeLateReturn)
		slog.Info("late return blocked", "resident_id", res.ID, "roll_no", res.RollNo, "leave_id", approved.ID)
		blocked := true
		return resident.MarkAttendanceResponse{
			Status:    resident.OutcomeBlocked,
			Message:   "Late return. Account blocked, contact the warden",
			IsBlocked: &blocked,
			Events: []event.Event{
				event.New(event.LateReturnBlock, map[string]any{
					"resident_id": res.ID,
					"roll_no":     res.RollNo,
					"name":        res.Name,
					"leave_id":    approved.ID,
				}),
			},
		}, nil
	}

	resp := resident.MarkAttendanceResponse{
		Status:  resident.OutcomePresent,
		Message: "Welcome back",
		Events:  []event.Event{censusEvent(res, resident.StatusPresent)},
	}
	if res.IsBlocked {
		blocked := true
		resp.IsBlocked = &blocked
	}

	if approved == nil {
		s.metrics.IncAttendanceMark(outcomeUnverified)
		slog.Warn("resident returned without an approved leave", "resident_id", res.ID, "roll_no", res.RollNo)
		resp.Unverified = true
		resp.Message = "Welcome back. No approved leave on record, the warden has been notified"
		resp.Events = append(resp.Events, event.New(event.UnverifiedReturn, map[string]any{
			"resident_id": res.ID,
			"roll_no":     res.RollNo,
			"name":        res.Name,
		}))
		return resp, nil
	}

	s.metrics.IncAttendanceMark(outcomeReturned)
	return resp, nil
}

func (s *AttendanceServiceImpl) applyPatch(ctx context.Context, residentID string, patch resident.Patch) error {
	n, err := s.ResidentRepository.BulkUpdate(ctx, resident.Filter{IDs: []string{residentID}}, patch)
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}
	if n == 0 {
		return resident.ErrResidentNotFound
	}
	return nil
}

func censusEvent(res resident.Resident, status resident.AttendanceStatus) event.Event {
	return event.New(event.CensusUpdate, map[string]any{
		"resident_id": res.ID,
		"roll_no":     res.RollNo,
		"status":      string(status),
	})
}
