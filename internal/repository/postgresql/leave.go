package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// UUIDv7 ids are time ordered, so l.id DESC is newest first.
const leaveSelect = `
	SELECT l.id, l.resident_id, l.leave_type,
		   l.out_date, l.out_time, l.in_date, l.in_time, l.reason,
		   l.warden_status, l.parent_status,
		   l.outpass_type, l.outpass_status, l.outpass_generated_at,
		   l.created_at, l.updated_at,
		   r.name AS resident_name, r.roll_no AS resident_roll_no
	FROM leaves l
	JOIN residents r ON l.resident_id = r.id
`

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

func (r *leaveRepositoryImpl) Create(ctx context.Context, l leave.Leave) (leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return leave.Leave{}, err
	}
	l.ID = id.String()
	if l.OutpassType == "" {
		l.OutpassType = leave.OutpassNone
	}
	if l.OutpassStatus == "" {
		l.OutpassStatus = leave.OutpassOpen
	}

	query := `
		INSERT INTO leaves (
			id, resident_id, leave_type,
			out_date, out_time, in_date, in_time, reason,
			warden_status, parent_status,
			outpass_type, outpass_status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8,
			$9, $10,
			$11, $12,
			NOW(), NOW()
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		l.ID, l.ResidentID, l.Type,
		l.OutDate, l.OutTime, l.InDate, l.InTime, l.Reason,
		l.WardenStatus, l.ParentStatus,
		l.OutpassType, l.OutpassStatus,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return leave.Leave{}, database.Unavailable(err)
	}

	return l, nil
}

func (r *leaveRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Leave, error) {
	if uuid.Validate(id) != nil {
		return leave.Leave{}, leave.ErrLeaveNotFound
	}
	q := GetQuerier(ctx, r.db)

	l, err := scanLeave(q.QueryRow(ctx, leaveSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Leave{}, leave.ErrLeaveNotFound
		}
		return leave.Leave{}, database.Unavailable(err)
	}
	return l, nil
}

func (r *leaveRepositoryImpl) Update(ctx context.Context, l leave.Leave) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leaves
		SET warden_status = $1, parent_status = $2,
			outpass_type = $3, outpass_status = $4, outpass_generated_at = $5,
			updated_at = NOW()
		WHERE id = $6
	`

	commandTag, err := q.Exec(ctx, query,
		l.WardenStatus, l.ParentStatus,
		l.OutpassType, l.OutpassStatus, l.OutpassGeneratedAt,
		l.ID,
	)
	if err != nil {
		return database.Unavailable(err)
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (r *leaveRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM leaves WHERE id = $1`, id)
	if err != nil {
		return database.Unavailable(err)
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (r *leaveRepositoryImpl) ListByResident(ctx context.Context, residentID string) ([]leave.Leave, error) {
	if uuid.Validate(residentID) != nil {
		return []leave.Leave{}, nil
	}
	return r.query(ctx, leaveSelect+` WHERE l.resident_id = $1 ORDER BY l.id DESC`, residentID)
}

func (r *leaveRepositoryImpl) Search(ctx context.Context, filter leave.SearchFilter) ([]leave.Leave, error) {
	// Build WHERE clause
	conditions := make([]string, 0)
	args := make([]interface{}, 0)
	argIndex := 1

	if filter.ResidentIDs != nil {
		conditions = append(conditions, fmt.Sprintf("l.resident_id = ANY($%d::uuid[])", argIndex))
		args = append(args, filter.ResidentIDs)
		argIndex++
	}
	if filter.WardenStatus != nil {
		conditions = append(conditions, fmt.Sprintf("l.warden_status = $%d", argIndex))
		args = append(args, *filter.WardenStatus)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	return r.query(ctx, fmt.Sprintf(`%s %s ORDER BY l.id DESC`, leaveSelect, whereClause), args...)
}

func (r *leaveRepositoryImpl) FindNewestApproved(ctx context.Context, residentID string) (*leave.Leave, error) {
	return r.findNewest(ctx, `
		WHERE l.resident_id = $1 AND l.warden_status = 'Approved' AND l.parent_status = 'Approved'
	`, residentID)
}

func (r *leaveRepositoryImpl) FindNewestAwaitingOutpass(ctx context.Context, residentID string) (*leave.Leave, error) {
	return r.findNewest(ctx, `
		WHERE l.resident_id = $1 AND l.parent_status = 'Approved' AND l.outpass_type = 'None'
	`, residentID)
}

func (r *leaveRepositoryImpl) SaveOutpass(ctx context.Context, l leave.Leave) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leaves
		SET outpass_type = $1, outpass_status = $2, outpass_generated_at = $3, updated_at = NOW()
		WHERE id = $4 AND outpass_type = 'None'
	`

	commandTag, err := q.Exec(ctx, query, l.OutpassType, l.OutpassStatus, l.OutpassGeneratedAt, l.ID)
	if err != nil {
		return database.Unavailable(err)
	}
	if commandTag.RowsAffected() == 1 {
		return nil
	}

	// Distinguish a lost race from a missing row.
	if _, err := r.GetByID(ctx, l.ID); err != nil {
		return err
	}
	return leave.ErrOutpassAlreadyGenerated
}

func (r *leaveRepositoryImpl) findNewest(ctx context.Context, where string, args ...interface{}) (*leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	l, err := scanLeave(q.QueryRow(ctx, leaveSelect+where+` ORDER BY l.id DESC LIMIT 1`, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, database.Unavailable(err)
	}
	return &l, nil
}

func (r *leaveRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]leave.Leave, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Unavailable(err)
	}
	defer rows.Close()

	var leaves []leave.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, database.Unavailable(err)
		}
		leaves = append(leaves, l)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Unavailable(err)
	}

	return leaves, nil
}

func scanLeave(row pgx.Row) (leave.Leave, error) {
	var l leave.Leave
	var residentName, residentRollNo string

	err := row.Scan(
		&l.ID, &l.ResidentID, &l.Type,
		&l.OutDate, &l.OutTime, &l.InDate, &l.InTime, &l.Reason,
		&l.WardenStatus, &l.ParentStatus,
		&l.OutpassType, &l.OutpassStatus, &l.OutpassGeneratedAt,
		&l.CreatedAt, &l.UpdatedAt,
		&residentName, &residentRollNo,
	)
	if err != nil {
		return leave.Leave{}, err
	}

	l.ResidentName = &residentName
	l.ResidentRollNo = &residentRollNo
	return l, nil
}
