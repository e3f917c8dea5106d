package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
)

// GenerateOutpass implements leave.LeaveService.
func (s *LeaveServiceImpl) GenerateOutpass(ctx context.Context, req leave.GenerateOutpassRequest) (leave.OutpassResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.OutpassResponse{}, err
	}

	l, err := s.getLeave(ctx, req.LeaveID)
	if err != nil {
		return leave.OutpassResponse{}, err
	}
	if req.ResidentID != nil && l.ResidentID != *req.ResidentID {
		return leave.OutpassResponse{}, leave.ErrLeaveNotOwned
	}

	if err := s.issue(ctx, &l, leave.OutpassType(req.Type), s.clock.Now()); err != nil {
		return leave.OutpassResponse{}, err
	}

	return leave.OutpassResponse{
		Message: fmt.Sprintf("%s outpass generated successfully", l.OutpassType),
		Leave:   leave.NewLeaveResponse(l),
		Events:  outpassEvents(l),
	}, nil
}

// TriggerPhysicalOutpass implements leave.LeaveService. It is called by the
// fingerprint kiosk at the warden office and issues a physical outpass for the
// resident's newest parent-approved leave that has none yet.
func (s *LeaveServiceImpl) TriggerPhysicalOutpass(ctx context.Context, req leave.TriggerPhysicalOutpassRequest) (leave.PhysicalOutpassResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.PhysicalOutpassResponse{}, err
	}

	res, err := s.ResidentRepository.GetByRollNo(ctx, req.RollNo)
	if err != nil {
		if errors.Is(err, resident.ErrResidentNotFound) {
			return leave.PhysicalOutpassResponse{}, err
		}
		return leave.PhysicalOutpassResponse{}, fmt.Errorf("failed to get resident by roll number: %w", err)
	}

	pending, err := s.LeaveRepository.FindNewestAwaitingOutpass(ctx, res.ID)
	if err != nil {
		return leave.PhysicalOutpassResponse{}, fmt.Errorf("failed to find pending leave: %w", err)
	}
	if pending == nil {
		return leave.PhysicalOutpassResponse{}, leave.ErrNoPendingLeave
	}

	l := *pending
	if err := s.issue(ctx, &l, leave.OutpassPhysical, s.clock.Now()); err != nil {
		return leave.PhysicalOutpassResponse{}, err
	}

	payload := leave.PrintPayload{
		Name:    res.Name,
		RollNo:  res.RollNo,
		OutDate: l.OutDate.Format(clock.DateLayout),
		OutTime: l.OutTime,
		InDate:  l.InDate.Format(clock.DateLayout),
		InTime:  l.InTime,
		PassID:  l.PassID(),
	}

	resp := leave.PhysicalOutpassResponse{
		Message:   "Physical outpass triggered successfully",
		PrintData: payload,
		Events:    outpassEvents(l),
	}

	// The outpass is already committed; a printer failure is only reported.
	if s.printer != nil {
		if err := s.printer.PrintReceipt(ctx, payload); err != nil {
			slog.Warn("failed to print outpass", "leave_id", l.ID, "pass_id", payload.PassID, "error", err)
			msg := err.Error()
			resp.PrintError = &msg
		}
	}

	return resp, nil
}

// issue records the outpass on l and marks its resident Out in one transaction.
func (s *LeaveServiceImpl) issue(ctx context.Context, l *leave.Leave, t leave.OutpassType, now time.Time) error {
	if err := l.IssueOutpass(t, now); err != nil {
		return err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.LeaveRepository.SaveOutpass(ctx, *l); err != nil {
			if errors.Is(err, leave.ErrOutpassAlreadyGenerated) {
				return err
			}
			return fmt.Errorf("failed to save outpass: %w", err)
		}

		out := resident.StatusOut
		n, err := s.ResidentRepository.BulkUpdate(ctx,
			resident.Filter{IDs: []string{l.ResidentID}},
			resident.Patch{AttendanceStatus: &out},
		)
		if err != nil {
			return fmt.Errorf("failed to mark resident out: %w", err)
		}
		if n == 0 {
			return resident.ErrResidentNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncOutpass(string(t))
	slog.Info("outpass generated", "leave_id", l.ID, "resident_id", l.ResidentID, "type", t)
	return nil
}

func outpassEvents(l leave.Leave) []event.Event {
	return []event.Event{
		event.New(event.OutpassUpdate, map[string]any{
			"resident_id": l.ResidentID,
			"leave_id":    l.ID,
			"type":        string(l.OutpassType),
			"status":      string(l.OutpassStatus),
		}),
		event.New(event.CensusUpdate, map[string]any{
			"resident_id": l.ResidentID,
			"status":      string(resident.StatusOut),
		}),
	}
}
