package ports

import (
	"context"

	"github.com/newsproof/validation-api/internal/core/domain"
)

// ValidationRepository persists the append-only validation audit trail.
type ValidationRepository interface {
	Insert(ctx context.Context, rec *domain.ValidationRecord) (int64, error)
	// ListByUser returns the newest records owned by userID, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.ValidationRecord, error)
}

// ValidationRecorder accepts records for persistence. Implementations may
// write synchronously or hand the record to background workers.
type ValidationRecorder interface {
	Record(ctx context.Context, rec domain.ValidationRecord) error
}
