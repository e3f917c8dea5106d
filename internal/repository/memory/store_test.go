package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	store := NewStore(clock.NewManual(time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)))
	residents := NewResidentRepository(store)
	leaves := NewLeaveRepository(store)
	config := NewConfigRepository(store)
	ctx := context.Background()

	present, err := residents.Create(ctx, resident.Resident{RollNo: "P1", Name: "P1", AttendanceStatus: resident.StatusPresent})
	require.NoError(t, err)
	existing, err := leaves.Create(ctx, leave.Leave{ResidentID: present.ID, Type: leave.TypeOuting, OutTime: "17:00", InTime: "19:00"})
	require.NoError(t, err)

	var created resident.Resident
	err = store.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := config.MarkReset(ctx, "2026-03-11"); err != nil {
			return err
		}
		absent := resident.StatusAbsent
		if _, err := residents.BulkUpdate(ctx, resident.Filter{}, resident.Patch{AttendanceStatus: &absent, ClearLastAttendance: true}); err != nil {
			return err
		}
		var err error
		if created, err = residents.Create(ctx, resident.Resident{RollNo: "N1", Name: "N1", AttendanceStatus: resident.StatusAbsent}); err != nil {
			return err
		}
		if err := leaves.Delete(ctx, existing.ID); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, err := residents.GetByID(ctx, present.ID)
	require.NoError(t, err)
	assert.Equal(t, resident.StatusPresent, got.AttendanceStatus)

	_, err = residents.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, resident.ErrResidentNotFound)

	_, err = leaves.GetByID(ctx, existing.ID)
	assert.NoError(t, err)

	snap, err := config.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.LastResetDate)
}

func TestWithinTransaction_CommitsOnSuccess(t *testing.T) {
	store := NewStore(clock.NewManual(time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)))
	config := NewConfigRepository(store)
	ctx := context.Background()

	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		return store.WithinTransaction(ctx, func(ctx context.Context) error {
			return config.MarkAutoBlock(ctx, "2026-03-11")
		})
	})
	require.NoError(t, err)

	snap, err := config.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", snap.LastAutoBlockDate)
}
