package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const residentColumns = `
	id, roll_no, name, register_no, approval_no, hostel_name, room_no, fingerprint_id,
	attendance_status, is_blocked, last_attendance_at, created_at, updated_at
`

type residentRepositoryImpl struct {
	db *database.DB
}

func NewResidentRepository(db *database.DB) resident.ResidentRepository {
	return &residentRepositoryImpl{db: db}
}

func (r *residentRepositoryImpl) Create(ctx context.Context, res resident.Resident) (resident.Resident, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return resident.Resident{}, err
	}
	res.ID = id.String()

	query := `
		INSERT INTO residents (
			id, roll_no, name, register_no, approval_no, hostel_name, room_no, fingerprint_id,
			attendance_status, is_blocked,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10,
			NOW(), NOW()
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		res.ID, res.RollNo, res.Name, res.RegisterNo, res.ApprovalNo, res.HostelName, res.RoomNo, res.FingerprintID,
		res.AttendanceStatus, res.IsBlocked,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return resident.Resident{}, resident.ErrRollNoExists
		}
		return resident.Resident{}, database.Unavailable(err)
	}

	return res, nil
}

func (r *residentRepositoryImpl) GetByID(ctx context.Context, id string) (resident.Resident, error) {
	if uuid.Validate(id) != nil {
		return resident.Resident{}, resident.ErrResidentNotFound
	}
	return r.getOne(ctx, "id = $1", id)
}

func (r *residentRepositoryImpl) GetByRollNo(ctx context.Context, rollNo string) (resident.Resident, error) {
	return r.getOne(ctx, "roll_no = $1", rollNo)
}

func (r *residentRepositoryImpl) getOne(ctx context.Context, where string, arg any) (resident.Resident, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM residents WHERE %s`, residentColumns, where)

	res, err := scanResident(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resident.Resident{}, resident.ErrResidentNotFound
		}
		return resident.Resident{}, database.Unavailable(err)
	}
	return res, nil
}

func (r *residentRepositoryImpl) List(ctx context.Context, filter resident.Filter) ([]resident.Resident, error) {
	q := GetQuerier(ctx, r.db)

	whereClause, args, _ := buildResidentWhere(filter, 1)

	query := fmt.Sprintf(`SELECT %s FROM residents %s ORDER BY roll_no`, residentColumns, whereClause)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Unavailable(err)
	}
	defer rows.Close()

	var residents []resident.Resident
	for rows.Next() {
		res, err := scanResident(rows)
		if err != nil {
			return nil, database.Unavailable(err)
		}
		residents = append(residents, res)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Unavailable(err)
	}

	return residents, nil
}

func (r *residentRepositoryImpl) BulkUpdate(ctx context.Context, filter resident.Filter, patch resident.Patch) (int64, error) {
	if patch.Empty() {
		return 0, nil
	}

	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	if patch.AttendanceStatus != nil {
		updates = append(updates, fmt.Sprintf("attendance_status = $%d", argIdx))
		args = append(args, *patch.AttendanceStatus)
		argIdx++
	}
	if patch.IsBlocked != nil {
		updates = append(updates, fmt.Sprintf("is_blocked = $%d", argIdx))
		args = append(args, *patch.IsBlocked)
		argIdx++
	}
	if patch.ClearLastAttendance {
		updates = append(updates, "last_attendance_at = NULL")
	} else if patch.LastAttendanceAt != nil {
		updates = append(updates, fmt.Sprintf("last_attendance_at = $%d", argIdx))
		args = append(args, *patch.LastAttendanceAt)
		argIdx++
	}
	updates = append(updates, "updated_at = NOW()")

	whereClause, whereArgs, _ := buildResidentWhere(filter, argIdx)
	args = append(args, whereArgs...)

	query := fmt.Sprintf(`UPDATE residents SET %s %s`, strings.Join(updates, ", "), whereClause)

	commandTag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, database.Unavailable(err)
	}
	return commandTag.RowsAffected(), nil
}

// buildResidentWhere renders filter as a WHERE clause whose placeholders start at argIndex.
func buildResidentWhere(filter resident.Filter, argIndex int) (string, []interface{}, int) {
	conditions := make([]string, 0)
	args := make([]interface{}, 0)

	if len(filter.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d::uuid[])", argIndex))
		args = append(args, filter.IDs)
		argIndex++
	}
	if len(filter.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("attendance_status = ANY($%d)", argIndex))
		args = append(args, statusStrings(filter.Statuses))
		argIndex++
	}
	if len(filter.ExcludeStatuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("NOT (attendance_status = ANY($%d))", argIndex))
		args = append(args, statusStrings(filter.ExcludeStatuses))
		argIndex++
	}
	if filter.IsBlocked != nil {
		conditions = append(conditions, fmt.Sprintf("is_blocked = $%d", argIndex))
		args = append(args, *filter.IsBlocked)
		argIndex++
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(roll_no ILIKE $%[1]d OR name ILIKE $%[1]d OR register_no ILIKE $%[1]d OR approval_no ILIKE $%[1]d)", argIndex))
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args, argIndex
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, argIndex
}

func statusStrings(statuses []resident.AttendanceStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanResident(row pgx.Row) (resident.Resident, error) {
	var res resident.Resident
	err := row.Scan(
		&res.ID, &res.RollNo, &res.Name, &res.RegisterNo, &res.ApprovalNo, &res.HostelName, &res.RoomNo, &res.FingerprintID,
		&res.AttendanceStatus, &res.IsBlocked, &res.LastAttendanceAt, &res.CreatedAt, &res.UpdatedAt,
	)
	return res, err
}
