package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const tokenSelect = `
	SELECT t.id, t.code, t.resident_id, t.token_type, t.status, t.price::float8,
		   t.food_name, t.session, t.providing_date,
		   t.generated_at, t.closed_at, t.closed_by,
		   t.created_at, t.updated_at,
		   r.name, r.roll_no, r.room_no
	FROM mess_tokens t
	JOIN residents r ON t.resident_id = r.id
`

type tokenRepositoryImpl struct {
	db *database.DB
}

func NewTokenRepository(db *database.DB) mess.TokenRepository {
	return &tokenRepositoryImpl{db: db}
}

func (r *tokenRepositoryImpl) Create(ctx context.Context, t mess.Token) (mess.Token, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO mess_tokens (
			id, code, resident_id, token_type, status, price,
			food_name, session, providing_date, generated_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			NOW(), NOW()
		)
	`
	if _, err := q.Exec(ctx, query,
		t.ID, t.Code, t.ResidentID, t.Type, t.Status, t.Price,
		t.FoodName, t.Session, t.ProvidingDate, t.GeneratedAt,
	); err != nil {
		return mess.Token{}, database.Unavailable(err)
	}

	return r.GetByID(ctx, t.ID)
}

func (r *tokenRepositoryImpl) GetByID(ctx context.Context, id string) (mess.Token, error) {
	if uuid.Validate(id) != nil {
		return mess.Token{}, mess.ErrTokenNotFound
	}
	q := GetQuerier(ctx, r.db)

	t, err := scanToken(q.QueryRow(ctx, tokenSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mess.Token{}, mess.ErrTokenNotFound
		}
		return mess.Token{}, database.Unavailable(err)
	}
	return t, nil
}

func (r *tokenRepositoryImpl) ListActive(ctx context.Context, residentID *string) ([]mess.Token, error) {
	q := GetQuerier(ctx, r.db)

	query := tokenSelect + ` WHERE t.status = $1`
	args := []interface{}{mess.TokenActive}
	if residentID != nil {
		if uuid.Validate(*residentID) != nil {
			return []mess.Token{}, nil
		}
		query += ` AND t.resident_id = $2`
		args = append(args, *residentID)
	}
	query += ` ORDER BY t.id DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Unavailable(err)
	}
	defer rows.Close()

	tokens := make([]mess.Token, 0)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, database.Unavailable(err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Unavailable(err)
	}
	return tokens, nil
}

// Close only touches an active row, so two wardens closing the same token cannot both bill it.
func (r *tokenRepositoryImpl) Close(ctx context.Context, id string, price float64, closedAt time.Time, closedBy string) (mess.Token, error) {
	if uuid.Validate(id) != nil {
		return mess.Token{}, mess.ErrTokenNotFound
	}
	q := GetQuerier(ctx, r.db)

	var by *string
	if closedBy != "" {
		by = &closedBy
	}

	query := `
		UPDATE mess_tokens
		SET status = $1, price = $2, closed_at = $3, closed_by = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`
	commandTag, err := q.Exec(ctx, query, mess.TokenClosed, price, closedAt, by, id, mess.TokenActive)
	if err != nil {
		return mess.Token{}, database.Unavailable(err)
	}
	if commandTag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return mess.Token{}, err
		}
		return mess.Token{}, mess.ErrTokenClosed
	}

	return r.GetByID(ctx, id)
}

func scanToken(row pgx.Row) (mess.Token, error) {
	var t mess.Token
	var residentName, residentRollNo string
	err := row.Scan(
		&t.ID, &t.Code, &t.ResidentID, &t.Type, &t.Status, &t.Price,
		&t.FoodName, &t.Session, &t.ProvidingDate,
		&t.GeneratedAt, &t.ClosedAt, &t.ClosedBy,
		&t.CreatedAt, &t.UpdatedAt,
		&residentName, &residentRollNo, &t.ResidentRoomNo,
	)
	if err != nil {
		return mess.Token{}, err
	}
	t.ResidentName = &residentName
	t.ResidentRollNo = &residentRollNo
	return t, nil
}
