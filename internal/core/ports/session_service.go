package ports

import (
	"context"
	"time"

	"github.com/newsproof/validation-api/internal/core/domain"
)

// SessionService issues, resolves and revokes login sessions.
type SessionService interface {
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*domain.Session, error)
	// ValidateSession returns the owning user, or domain.ErrUnauthenticated for
	// a missing, unknown or expired token.
	ValidateSession(ctx context.Context, token string) (*domain.User, error)
	RevokeSession(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}
