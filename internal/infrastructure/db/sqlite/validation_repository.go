package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/newsproof/validation-api/internal/core/domain"
)

// ValidationRepository appends to the validations audit table. Rows are never
// updated.
type ValidationRepository struct {
	db *sql.DB
}

func NewValidationRepository(store *Store) *ValidationRepository {
	return &ValidationRepository{db: store.db}
}

func (r *ValidationRepository) Insert(ctx context.Context, rec *domain.ValidationRecord) (int64, error) {
	var reasons sql.NullString
	if len(rec.Reasons) > 0 {
		b, err := json.Marshal(rec.Reasons)
		if err != nil {
			return 0, fmt.Errorf("encode reasons: %w", err)
		}
		reasons = sql.NullString{String: string(b), Valid: true}
	}

	var userID sql.NullInt64
	if rec.UserID != nil {
		userID = sql.NullInt64{Int64: *rec.UserID, Valid: true}
	}

	source := nullString(rec.SourceURL)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO validations (user_id, text, source_url, score, classification, reasons, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, rec.Text, source, rec.Score, rec.Classification, reasons, toMillis(rec.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("insert validation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert validation: last id: %w", err)
	}
	return id, nil
}

func (r *ValidationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.ValidationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, text, source_url, score, classification, reasons, created_at
FROM validations
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	defer rows.Close()

	var out []domain.ValidationRecord
	for rows.Next() {
		var (
			rec       domain.ValidationRecord
			owner     sql.NullInt64
			source    sql.NullString
			reasons   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &owner, &rec.Text, &source, &rec.Score, &rec.Classification, &reasons, &createdAt); err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		if owner.Valid {
			id := owner.Int64
			rec.UserID = &id
		}
		rec.SourceURL = source.String
		rec.Reasons = []string{}
		if reasons.Valid && reasons.String != "" {
			if err := json.Unmarshal([]byte(reasons.String), &rec.Reasons); err != nil {
				return nil, fmt.Errorf("decode reasons for validation %d: %w", rec.ID, err)
			}
		}
		rec.CreatedAt = fromMillis(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	return out, nil
}
