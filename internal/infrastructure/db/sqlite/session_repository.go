package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/newsproof/validation-api/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{db: store.db}
}

// Create inserts s. A token collision yields domain.ErrSessionExists and an
// unknown owner yields domain.ErrUserNotFound.
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		s.Token, s.UserID, toMillis(s.ExpiresAt), toMillis(s.CreatedAt),
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrSessionExists
	case isForeignKeyViolation(err):
		return domain.ErrUserNotFound
	default:
		return fmt.Errorf("insert session: %w", err)
	}
}

func (r *SessionRepository) FindWithUser(ctx context.Context, token string) (*domain.Session, *domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT s.id, s.user_id, s.expires_at, s.created_at,
       u.id, u.email, u.password_hash, u.name, u.created_at, u.updated_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.id = ?`, token)

	var (
		s                                         domain.Session
		u                                         domain.User
		name                                      sql.NullString
		expiresAt, sCreated, uCreated, uUpdatedAt int64
	)
	err := row.Scan(
		&s.Token, &s.UserID, &expiresAt, &sCreated,
		&u.ID, &u.Email, &u.PasswordHash, &name, &uCreated, &uUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("find session: %w", err)
	}

	u.Name = name.String
	s.ExpiresAt = fromMillis(expiresAt)
	s.CreatedAt = fromMillis(sCreated)
	u.CreatedAt = fromMillis(uCreated)
	u.UpdatedAt = fromMillis(uUpdatedAt)
	return &s, &u, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: rows affected: %w", err)
	}
	return n, nil
}
