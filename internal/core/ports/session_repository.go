package ports

import (
	"context"
	"time"

	"github.com/newsproof/validation-api/internal/core/domain"
)

// SessionRepository defines persistence for login sessions.
type SessionRepository interface {
	// Create inserts a session. Returns domain.ErrSessionExists when the token
	// collides with an existing row.
	Create(ctx context.Context, s *domain.Session) error
	// FindWithUser resolves a token to its session and owning user in one
	// lookup. Returns domain.ErrSessionNotFound when the token is unknown.
	FindWithUser(ctx context.Context, token string) (*domain.Session, *domain.User, error)
	// Delete removes the session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes every session with expires_at <= now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
