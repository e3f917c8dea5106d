package resident

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
)

type ResidentServiceImpl struct {
	resident.ResidentRepository
}

func NewResidentService(residentRepo resident.ResidentRepository) resident.ResidentService {
	return &ResidentServiceImpl{ResidentRepository: residentRepo}
}

// Register implements resident.ResidentService.
func (s *ResidentServiceImpl) Register(ctx context.Context, req resident.RegisterResidentRequest) (resident.ResidentResponse, error) {
	if err := req.Validate(); err != nil {
		return resident.ResidentResponse{}, err
	}

	created, err := s.ResidentRepository.Create(ctx, resident.Resident{
		RollNo:           req.RollNo,
		Name:             req.Name,
		RegisterNo:       req.RegisterNo,
		ApprovalNo:       req.ApprovalNo,
		HostelName:       req.HostelName,
		RoomNo:           req.RoomNo,
		FingerprintID:    req.FingerprintID,
		AttendanceStatus: resident.StatusAbsent,
		IsBlocked:        false,
	})
	if err != nil {
		if errors.Is(err, resident.ErrRollNoExists) {
			return resident.ResidentResponse{}, err
		}
		return resident.ResidentResponse{}, fmt.Errorf("failed to create resident: %w", err)
	}

	slog.Info("resident registered", "resident_id", created.ID, "roll_no", created.RollNo)
	return resident.NewResidentResponse(created), nil
}

// Get implements resident.ResidentService.
func (s *ResidentServiceImpl) Get(ctx context.Context, id string) (resident.ResidentResponse, error) {
	r, err := s.ResidentRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, resident.ErrResidentNotFound) {
			return resident.ResidentResponse{}, err
		}
		return resident.ResidentResponse{}, fmt.Errorf("failed to get resident: %w", err)
	}
	return resident.NewResidentResponse(r), nil
}

// List implements resident.ResidentService.
func (s *ResidentServiceImpl) List(ctx context.Context, req resident.ListResidentsRequest) ([]resident.ResidentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.list(ctx, req.Filter())
}

// ListBlocked implements resident.ResidentService.
func (s *ResidentServiceImpl) ListBlocked(ctx context.Context) ([]resident.ResidentResponse, error) {
	blocked := true
	return s.list(ctx, resident.Filter{IsBlocked: &blocked})
}

func (s *ResidentServiceImpl) list(ctx context.Context, filter resident.Filter) ([]resident.ResidentResponse, error) {
	residents, err := s.ResidentRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}

	out := make([]resident.ResidentResponse, 0, len(residents))
	for _, r := range residents {
		out = append(out, resident.NewResidentResponse(r))
	}
	return out, nil
}

// SetBlocked implements resident.ResidentService.
func (s *ResidentServiceImpl) SetBlocked(ctx context.Context, req resident.SetBlockedRequest) (resident.BlockStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return resident.BlockStatusResponse{}, err
	}

	n, err := s.ResidentRepository.BulkUpdate(ctx,
		resident.Filter{IDs: []string{req.ID}},
		resident.Patch{IsBlocked: req.IsBlocked},
	)
	if err != nil {
		return resident.BlockStatusResponse{}, fmt.Errorf("failed to update block status: %w", err)
	}
	if n == 0 {
		return resident.BlockStatusResponse{}, resident.ErrResidentNotFound
	}

	r, err := s.ResidentRepository.GetByID(ctx, req.ID)
	if err != nil {
		return resident.BlockStatusResponse{}, fmt.Errorf("failed to get resident: %w", err)
	}

	verb := "unblocked"
	if r.IsBlocked {
		verb = "blocked"
	}
	slog.Info("resident block status changed", "resident_id", r.ID, "roll_no", r.RollNo, "is_blocked", r.IsBlocked)

	return resident.BlockStatusResponse{
		Message:  fmt.Sprintf("Resident %s successfully", verb),
		Resident: resident.NewResidentResponse(r),
		Events: []event.Event{
			event.New(event.CensusUpdate, map[string]any{
				"resident_id": r.ID,
				"roll_no":     r.RollNo,
				"is_blocked":  r.IsBlocked,
			}),
		},
	}, nil
}

// BlockAbsentees implements resident.ResidentService.
func (s *ResidentServiceImpl) BlockAbsentees(ctx context.Context) (resident.BulkResult, error) {
	absent := resident.StatusAbsent
	blocked, notBlocked := true, false

	n, err := s.ResidentRepository.BulkUpdate(ctx,
		resident.Filter{Statuses: []resident.AttendanceStatus{absent}, IsBlocked: &notBlocked},
		resident.Patch{IsBlocked: &blocked},
	)
	if err != nil {
		return resident.BulkResult{}, fmt.Errorf("failed to block absentees: %w", err)
	}

	slog.Info("absentees blocked", "count", n)
	return resident.BulkResult{
		Count:   n,
		Message: fmt.Sprintf("%d absent residents have been restricted", n),
		Events:  []event.Event{bulkCensusEvent("block_absentees", n)},
	}, nil
}

// UnblockAll implements resident.ResidentService.
func (s *ResidentServiceImpl) UnblockAll(ctx context.Context) (resident.BulkResult, error) {
	blocked, notBlocked := true, false

	n, err := s.ResidentRepository.BulkUpdate(ctx,
		resident.Filter{IsBlocked: &blocked},
		resident.Patch{IsBlocked: &notBlocked},
	)
	if err != nil {
		return resident.BulkResult{}, fmt.Errorf("failed to unblock residents: %w", err)
	}

	slog.Info("all residents unblocked", "count", n)
	return resident.BulkResult{
		Count:   n,
		Message: fmt.Sprintf("Access restored for %d residents", n),
		Events:  []event.Event{bulkCensusEvent("unblock_all", n)},
	}, nil
}

func bulkCensusEvent(kind string, n int64) event.Event {
	return event.New(event.CensusUpdate, map[string]any{"type": kind, "count": n})
}
