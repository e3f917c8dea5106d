package sysconfig

import (
	"context"
	"testing"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
	"github.com/hostel-arena/hms-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() sysconfig.ConfigService {
	store := memory.NewStore(clock.NewManual(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	return NewConfigService(memory.NewConfigRepository(store))
}

func strPtr(s string) *string { return &s }

func TestGet_CreatesDefaults(t *testing.T) {
	svc := newService()

	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "19:00", cfg.AttendanceStart)
	assert.Equal(t, "20:00", cfg.AttendanceEnd)
	assert.Equal(t, "16:00", cfg.CollegeEndTime)
	assert.Equal(t, "22:00", cfg.CurfewTime)
	assert.Equal(t, "06:00", cfg.DailyResetTime)
	assert.Empty(t, cfg.LastResetDate)
}

func TestUpdate_PartialPatch(t *testing.T) {
	svc := newService()

	cfg, err := svc.Update(context.Background(), sysconfig.UpdateConfigRequest{CurfewTime: strPtr("21:30")})
	require.NoError(t, err)
	assert.Equal(t, "21:30", cfg.CurfewTime)
	assert.Equal(t, "19:00", cfg.AttendanceStart)

	require.Len(t, cfg.Events, 1)
	assert.Equal(t, event.ConfigUpdate, cfg.Events[0].Name)
	assert.Equal(t, "21:30", cfg.Events[0].Payload["curfew_time"])

	again, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "21:30", again.CurfewTime)
}

func TestUpdate_Validation(t *testing.T) {
	svc := newService()

	tests := []struct {
		name      string
		req       sysconfig.UpdateConfigRequest
		wantField string
	}{
		{name: "empty body", req: sysconfig.UpdateConfigRequest{}, wantField: "body"},
		{name: "bad hour", req: sysconfig.UpdateConfigRequest{AttendanceEnd: strPtr("24:00")}, wantField: "attendance_end"},
		{name: "missing padding", req: sysconfig.UpdateConfigRequest{DailyResetTime: strPtr("6:00")}, wantField: "daily_reset_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tt.req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.wantField)
		})
	}
}
