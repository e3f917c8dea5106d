package sysconfig

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
)

type ConfigServiceImpl struct {
	sysconfig.ConfigRepository
}

func NewConfigService(configRepo sysconfig.ConfigRepository) sysconfig.ConfigService {
	return &ConfigServiceImpl{ConfigRepository: configRepo}
}

// Get implements sysconfig.ConfigService.
func (s *ConfigServiceImpl) Get(ctx context.Context) (sysconfig.ConfigResponse, error) {
	snap, err := s.ConfigRepository.Get(ctx)
	if err != nil {
		return sysconfig.ConfigResponse{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return sysconfig.NewConfigResponse(snap), nil
}

// Update implements sysconfig.ConfigService.
func (s *ConfigServiceImpl) Update(ctx context.Context, req sysconfig.UpdateConfigRequest) (sysconfig.ConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return sysconfig.ConfigResponse{}, err
	}

	snap, err := s.ConfigRepository.Update(ctx, req.Patch())
	if err != nil {
		return sysconfig.ConfigResponse{}, fmt.Errorf("failed to update configuration: %w", err)
	}

	slog.Info("security configuration updated",
		"attendance_start", snap.AttendanceStart,
		"attendance_end", snap.AttendanceEnd,
		"college_end_time", snap.CollegeEndTime,
		"curfew_time", snap.CurfewTime,
		"daily_reset_time", snap.DailyResetTime,
	)

	resp := sysconfig.NewConfigResponse(snap)
	resp.Events = []event.Event{
		event.New(event.ConfigUpdate, map[string]any{
			"attendance_start": snap.AttendanceStart,
			"attendance_end":   snap.AttendanceEnd,
			"college_end_time": snap.CollegeEndTime,
			"curfew_time":      snap.CurfewTime,
			"daily_reset_time": snap.DailyResetTime,
		}),
	}
	return resp, nil
}
