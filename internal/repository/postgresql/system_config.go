package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
)

type configRepositoryImpl struct {
	db *database.DB
}

func NewConfigRepository(db *database.DB) sysconfig.ConfigRepository {
	return &configRepositoryImpl{db: db}
}

func (r *configRepositoryImpl) Get(ctx context.Context) (sysconfig.Snapshot, error) {
	q := GetQuerier(ctx, r.db)

	d := sysconfig.Defaults()
	insert := `
		INSERT INTO system_config (key, attendance_start, attendance_end, college_end_time, curfew_time, daily_reset_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, sysconfig.Key,
		d.AttendanceStart, d.AttendanceEnd, d.CollegeEndTime, d.CurfewTime, d.DailyResetTime,
	); err != nil {
		return sysconfig.Snapshot{}, database.Unavailable(err)
	}

	query := `
		SELECT attendance_start, attendance_end, college_end_time, curfew_time, daily_reset_time,
			   last_reset_date, last_auto_block_date,
			   special_food_name, special_food_session, special_food_date,
			   special_food_start_time, special_food_end_time, special_food_providing_date,
			   updated_at
		FROM system_config
		WHERE key = $1
	`

	var s sysconfig.Snapshot
	err := q.QueryRow(ctx, query, sysconfig.Key).Scan(
		&s.AttendanceStart, &s.AttendanceEnd, &s.CollegeEndTime, &s.CurfewTime, &s.DailyResetTime,
		&s.LastResetDate, &s.LastAutoBlockDate,
		&s.SpecialFood.Name, &s.SpecialFood.Session, &s.SpecialFood.Date,
		&s.SpecialFood.StartTime, &s.SpecialFood.EndTime, &s.SpecialFood.ProvidingDate,
		&s.UpdatedAt,
	)
	if err != nil {
		return sysconfig.Snapshot{}, database.Unavailable(err)
	}
	return s, nil
}

func (r *configRepositoryImpl) Update(ctx context.Context, patch sysconfig.Patch) (sysconfig.Snapshot, error) {
	// Make sure the row exists before patching it.
	if _, err := r.Get(ctx); err != nil {
		return sysconfig.Snapshot{}, err
	}

	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	fields := []struct {
		column string
		value  *string
	}{
		{"attendance_start", patch.AttendanceStart},
		{"attendance_end", patch.AttendanceEnd},
		{"college_end_time", patch.CollegeEndTime},
		{"curfew_time", patch.CurfewTime},
		{"daily_reset_time", patch.DailyResetTime},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = $%d", f.column, argIdx))
		args = append(args, *f.value)
		argIdx++
	}

	if len(updates) == 0 {
		return sysconfig.Snapshot{}, sysconfig.ErrNoFieldsToUpdate
	}
	updates = append(updates, "updated_at = NOW()")
	args = append(args, sysconfig.Key)

	query := fmt.Sprintf(`UPDATE system_config SET %s WHERE key = $%d`, strings.Join(updates, ", "), argIdx)
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return sysconfig.Snapshot{}, database.Unavailable(err)
	}

	return r.Get(ctx)
}

func (r *configRepositoryImpl) UpdateSpecialFood(ctx context.Context, food sysconfig.SpecialFood) (sysconfig.Snapshot, error) {
	if _, err := r.Get(ctx); err != nil {
		return sysconfig.Snapshot{}, err
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE system_config
		SET special_food_name = $1, special_food_session = $2, special_food_date = $3,
			special_food_start_time = $4, special_food_end_time = $5, special_food_providing_date = $6,
			updated_at = NOW()
		WHERE key = $7
	`
	if _, err := q.Exec(ctx, query,
		food.Name, food.Session, food.Date, food.StartTime, food.EndTime, food.ProvidingDate, sysconfig.Key,
	); err != nil {
		return sysconfig.Snapshot{}, database.Unavailable(err)
	}

	return r.Get(ctx)
}

func (r *configRepositoryImpl) MarkReset(ctx context.Context, date string) error {
	return r.advanceMarker(ctx, "last_reset_date", date)
}

func (r *configRepositoryImpl) MarkAutoBlock(ctx context.Context, date string) error {
	return r.advanceMarker(ctx, "last_auto_block_date", date)
}

// advanceMarker sets column to date only when it differs, so two instances racing
// on the same tick cannot both claim the day.
func (r *configRepositoryImpl) advanceMarker(ctx context.Context, column, date string) error {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE system_config
		SET %[1]s = $1, updated_at = NOW()
		WHERE key = $2 AND %[1]s <> $1
	`, column)

	commandTag, err := q.Exec(ctx, query, date, sysconfig.Key)
	if err != nil {
		return database.Unavailable(err)
	}
	if commandTag.RowsAffected() == 0 {
		return sysconfig.ErrMarkerNotAdvanced
	}
	return nil
}
