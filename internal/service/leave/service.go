package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/metrics"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRepository
	resident.ResidentRepository
	sysconfig.ConfigRepository
	printer leave.ReceiptPrinter
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewLeaveService(
	tx database.Transactor,
	leaveRepo leave.LeaveRepository,
	residentRepo resident.ResidentRepository,
	configRepo sysconfig.ConfigRepository,
	printer leave.ReceiptPrinter,
	clk clock.Clock,
	m *metrics.Metrics,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                 tx,
		LeaveRepository:    leaveRepo,
		ResidentRepository: residentRepo,
		ConfigRepository:   configRepo,
		printer:            printer,
		clock:              clk,
		metrics:            m,
	}
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	if _, err := s.ResidentRepository.GetByID(ctx, req.ResidentID); err != nil {
		if errors.Is(err, resident.ErrResidentNotFound) {
			return leave.LeaveResponse{}, err
		}
		return leave.LeaveResponse{}, fmt.Errorf("failed to get resident: %w", err)
	}

	snap, err := s.ConfigRepository.Get(ctx)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	leaveType := leave.LeaveType(req.LeaveType)
	if err := checkLeaveHours(leaveType, req.OutTime, snap); err != nil {
		return leave.LeaveResponse{}, err
	}

	wardenStatus := leave.ApprovalPending
	// General Leave skips warden review.
	if leaveType == leave.TypeGeneralLeave {
		wardenStatus = leave.ApprovalApproved
	}

	outDate, inDate := req.Dates()
	created, err := s.LeaveRepository.Create(ctx, leave.Leave{
		ResidentID:    req.ResidentID,
		Type:          leaveType,
		OutDate:       outDate,
		OutTime:       req.OutTime,
		InDate:        inDate,
		InTime:        req.InTime,
		Reason:        req.Reason,
		WardenStatus:  wardenStatus,
		ParentStatus:  leave.ApprovalPending,
		OutpassType:   leave.OutpassNone,
		OutpassStatus: leave.OutpassOpen,
	})
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to create leave: %w", err)
	}

	slog.Info("leave applied", "leave_id", created.ID, "resident_id", created.ResidentID, "leave_type", created.Type)
	return leave.NewLeaveResponse(created), nil
}

// checkLeaveHours enforces when each leave type may start.
func checkLeaveHours(t leave.LeaveType, outTime string, snap sysconfig.Snapshot) error {
	out := clock.TimeToMinutes(outTime)

	switch t {
	case leave.TypeLeave, leave.TypeGeneralLeave:
		if out < clock.TimeToMinutes(snap.CollegeEndTime) {
			return fmt.Errorf("%w: leave may start only after college hours (%s), use Emergency for immediate departure",
				leave.ErrOutsideLeaveHours, snap.CollegeEndTime)
		}
	case leave.TypeOuting:
		if out < clock.TimeToMinutes(sysconfig.EarliestOutingTime) || out > clock.ClosingMinutes(snap.CurfewTime) {
			return fmt.Errorf("%w: outing is permitted between %s and curfew (%s)",
				leave.ErrOutsideLeaveHours, sysconfig.EarliestOutingTime, snap.CurfewTime)
		}
	}
	return nil
}

// ReviewByWarden implements leave.LeaveService.
func (s *LeaveServiceImpl) ReviewByWarden(ctx context.Context, req leave.ReviewRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	l, err := s.getLeave(ctx, req.LeaveID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	l.WardenStatus = leave.ApprovalStatus(req.Status)
	if err := s.LeaveRepository.Update(ctx, l); err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to update leave: %w", err)
	}

	slog.Info("warden reviewed leave", "leave_id", l.ID, "status", l.WardenStatus)
	return leave.NewLeaveResponse(l), nil
}

// ReviewByParent implements leave.LeaveService.
func (s *LeaveServiceImpl) ReviewByParent(ctx context.Context, req leave.ReviewRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	l, err := s.getLeave(ctx, req.LeaveID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	if l.Type != leave.TypeGeneralLeave && l.WardenStatus != leave.ApprovalApproved {
		return leave.LeaveResponse{}, leave.ErrWardenApprovalRequired
	}

	l.ParentStatus = leave.ApprovalStatus(req.Status)
	if err := s.LeaveRepository.Update(ctx, l); err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to update leave: %w", err)
	}

	slog.Info("parent reviewed leave", "leave_id", l.ID, "status", l.ParentStatus)
	return leave.NewLeaveResponse(l), nil
}

// ListByResident implements leave.LeaveService.
func (s *LeaveServiceImpl) ListByResident(ctx context.Context, residentID string) ([]leave.LeaveResponse, error) {
	leaves, err := s.LeaveRepository.ListByResident(ctx, residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	return toResponses(leaves), nil
}

// Search implements leave.LeaveService. "ALL" lists every leave awaiting the warden;
// any other query lists the full history of residents whose identifiers match.
func (s *LeaveServiceImpl) Search(ctx context.Context, req leave.SearchRequest) ([]leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filter := leave.SearchFilter{}
	if req.IsAll() {
		pending := leave.ApprovalPending
		filter.WardenStatus = &pending
	} else {
		residents, err := s.ResidentRepository.List(ctx, resident.Filter{Search: &req.Query})
		if err != nil {
			return nil, fmt.Errorf("failed to search residents: %w", err)
		}
		if len(residents) == 0 {
			return []leave.LeaveResponse{}, nil
		}
		filter.ResidentIDs = make([]string, 0, len(residents))
		for _, r := range residents {
			filter.ResidentIDs = append(filter.ResidentIDs, r.ID)
		}
	}

	leaves, err := s.LeaveRepository.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search leaves: %w", err)
	}
	return toResponses(leaves), nil
}

// Withdraw implements leave.LeaveService.
func (s *LeaveServiceImpl) Withdraw(ctx context.Context, req leave.WithdrawRequest) error {
	l, err := s.getLeave(ctx, req.LeaveID)
	if err != nil {
		return err
	}

	if req.ResidentID != nil && l.ResidentID != *req.ResidentID {
		return leave.ErrLeaveNotOwned
	}
	if !l.Withdrawable() {
		return leave.ErrLeaveNotWithdrawable
	}

	if err := s.LeaveRepository.Delete(ctx, l.ID); err != nil {
		return fmt.Errorf("failed to delete leave: %w", err)
	}

	slog.Info("leave withdrawn", "leave_id", l.ID, "resident_id", l.ResidentID)
	return nil
}

func (s *LeaveServiceImpl) getLeave(ctx context.Context, id string) (leave.Leave, error) {
	l, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveNotFound) {
			return leave.Leave{}, err
		}
		return leave.Leave{}, fmt.Errorf("failed to get leave: %w", err)
	}
	return l, nil
}

func toResponses(leaves []leave.Leave) []leave.LeaveResponse {
	out := make([]leave.LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, leave.NewLeaveResponse(l))
	}
	return out
}
