package reconcile

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

// Rule names, used in logs and as the hms_reconcile_residents_affected_total label.
const (
	RuleDailyReset         = "daily_reset"
	RuleAutoBlock          = "auto_block"
	RuleCurfewLockdown     = "curfew_lockdown"
	RuleLateReturnLockdown = "late_return_lockdown"
)

// Result is the outcome of one rule evaluation.
type Result struct {
	Rule     string
	Affected int64
	Events   []event.Event
}

// Rule evaluates one reconciliation rule against a configuration snapshot at now.
type Rule func(ctx context.Context, snap sysconfig.Snapshot, now time.Time) (Result, error)

// Service converges resident state on every heartbeat tick, independent of any
// incoming scan. Every rule is idempotent: re-running it at the same instant changes nothing.
type Service struct {
	tx        database.Transactor
	residents resident.ResidentRepository
	leaves    leave.LeaveRepository
	config    sysconfig.ConfigRepository
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func NewService(
	tx database.Transactor,
	residentRepo resident.ResidentRepository,
	leaveRepo leave.LeaveRepository,
	configRepo sysconfig.ConfigRepository,
	clk clock.Clock,
	m *metrics.Metrics,
) *Service {
	return &Service{
		tx:        tx,
		residents: residentRepo,
		leaves:    leaveRepo,
		config:    configRepo,
		clock:     clk,
		metrics:   m,
	}
}

// Tick loads the configuration once and evaluates every rule with it. A failing
// rule is logged and does not stop the others; all failures are joined.
func (s *Service) Tick(ctx context.Context) ([]event.Event, error) {
	now := s.clock.Now()

	snap, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	rules := []struct {
		name string
		fn   Rule
	}{
		{RuleDailyReset, s.DailyReset},
		{RuleAutoBlock, s.AutoBlock},
		{RuleCurfewLockdown, s.CurfewLockdown},
		{RuleLateReturnLockdown, s.LateReturnLockdown},
	}

	var events []event.Event
	var errs []error
	for _, rule := range rules {
		res, err := rule.fn(ctx, snap, now)
		if err != nil {
			slog.Error("reconcile rule failed", "rule", rule.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", rule.name, err))
		}
		if res.Affected > 0 {
			slog.Info("reconcile rule applied", "rule", rule.name, "affected", res.Affected)
			s.metrics.AddResidentsAffected(rule.name, res.Affected)
		}
		events = append(events, res.Events...)
	}

	return events, errors.Join(errs...)
}

// CurfewLockdown blocks every unblocked Absent resident once curfew has passed.
func (s *Service) CurfewLockdown(ctx context.Context, snap sysconfig.Snapshot, now time.Time) (Result, error) {
	if !snap.PastCurfew(now) {
		return Result{Rule: RuleCurfewLockdown}, nil
	}

	blocked, notBlocked := true, false
	n, err := s.residents.BulkUpdate(ctx,
		resident.Filter{Statuses: []resident.AttendanceStatus{resident.StatusAbsent}, IsBlocked: &notBlocked},
		resident.Patch{IsBlocked: &blocked},
	)
	if err != nil {
		return Result{Rule: RuleCurfewLockdown}, fmt.Errorf("failed to block absentees: %w", err)
	}

	res := Result{Rule: RuleCurfewLockdown, Affected: n}
	if n > 0 {
		res.Events = []event.Event{
			event.New(event.CensusUpdate, map[string]any{"type": RuleCurfewLockdown, "count": n}),
		}
	}
	return res, nil
}

// LateReturnLockdown blocks every unblocked Out resident whose newest approved
// leave is past its return deadline. The resident stays Out until they scan in.
func (s *Service) LateReturnLockdown(ctx context.Context, _ sysconfig.Snapshot, now time.Time) (Result, error) {
	out := resident.StatusOut
	notBlocked := false

	candidates, err := s.residents.List(ctx, resident.Filter{
		Statuses:  []resident.AttendanceStatus{out},
		IsBlocked: &notBlocked,
	})
	if err != nil {
		return Result{Rule: RuleLateReturnLockdown}, fmt.Errorf("failed to list residents out: %w", err)
	}

	var overdue []string
	var events []event.Event
	var errs []error
	for _, r := range candidates {
		l, err := s.leaves.FindNewestApproved(ctx, r.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("resident %s: %w", r.ID, err))
			continue
		}
		if l == nil || !l.ReturnOverdue(now) {
			continue
		}
		overdue = append(overdue, r.ID)
		events = append(events, event.New(event.LateReturnBlock, map[string]any{
			"resident_id": r.ID,
			"roll_no":     r.RollNo,
			"name":        r.Name,
			"leave_id":    l.ID,
			"deadline":    l.ReturnDeadline(now.Location()).Format(time.RFC3339),
		}))
	}

	res := Result{Rule: RuleLateReturnLockdown}
	if len(overdue) > 0 {
		// Re-check status and block flag so a scan that landed since the List is not overridden.
		blocked := true
		n, err := s.residents.BulkUpdate(ctx,
			resident.Filter{IDs: overdue, Statuses: []resident.AttendanceStatus{out}, IsBlocked: &notBlocked},
			resident.Patch{IsBlocked: &blocked},
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to block late residents: %w", err))
		} else {
			res.Affected = n
			res.Events = events
		}
	}

	return res, errors.Join(errs...)
}

// DailyReset starts a new attendance day: Present residents become Absent and
// their last attendance is cleared. It runs at most once per calendar date, on
// the first tick at or after the configured reset time.
func (s *Service) DailyReset(ctx context.Context, snap sysconfig.Snapshot, now time.Time) (Result, error) {
	if !snap.ResetDue(now) {
		return Result{Rule: RuleDailyReset}, nil
	}

	today := clock.DateString(now)
	var n int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.config.MarkReset(ctx, today); err != nil {
			return err
		}

		present, absent := resident.StatusPresent, resident.StatusAbsent
		var err error
		n, err = s.residents.BulkUpdate(ctx,
			resident.Filter{Statuses: []resident.AttendanceStatus{present}},
			resident.Patch{AttendanceStatus: &absent, ClearLastAttendance: true},
		)
		return err
	})
	if err != nil {
		if errors.Is(err, sysconfig.ErrMarkerNotAdvanced) {
			// Another instance already reset today.
			return Result{Rule: RuleDailyReset}, nil
		}
		return Result{Rule: RuleDailyReset}, fmt.Errorf("failed to reset attendance: %w", err)
	}

	slog.Info("daily attendance reset", "date", today, "reset", n)
	return Result{
		Rule:     RuleDailyReset,
		Affected: n,
		Events: []event.Event{
			event.New(event.CensusUpdate, map[string]any{"type": RuleDailyReset, "date": today, "count": n}),
		},
	}, nil
}

// AutoBlock blocks every resident who is neither Present nor Out once the
// attendance window has closed. It runs at most once per calendar date.
func (s *Service) AutoBlock(ctx context.Context, snap sysconfig.Snapshot, now time.Time) (Result, error) {
	if !snap.AutoBlockDue(now) {
		return Result{Rule: RuleAutoBlock}, nil
	}

	today := clock.DateString(now)
	var n int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.config.MarkAutoBlock(ctx, today); err != nil {
			return err
		}

		absent := resident.StatusAbsent
		blocked, notBlocked := true, false
		var err error
		n, err = s.residents.BulkUpdate(ctx,
			resident.Filter{
				ExcludeStatuses: []resident.AttendanceStatus{resident.StatusPresent, resident.StatusOut},
				IsBlocked:       &notBlocked,
			},
			resident.Patch{IsBlocked: &blocked, AttendanceStatus: &absent},
		)
		return err
	})
	if err != nil {
		if errors.Is(err, sysconfig.ErrMarkerNotAdvanced) {
			return Result{Rule: RuleAutoBlock}, nil
		}
		return Result{Rule: RuleAutoBlock}, fmt.Errorf("failed to auto-block absentees: %w", err)
	}

	slog.Info("auto-block applied", "date", today, "blocked", n, "attendance_end", snap.AttendanceEnd)
	res := Result{Rule: RuleAutoBlock, Affected: n}
	if n > 0 {
		res.Events = []event.Event{
			event.New(event.AutoBlockTrigger, map[string]any{
				"count":   n,
				"message": fmt.Sprintf("Auto-blocked %d absentees", n),
			}),
		}
	}
	return res, nil
}
