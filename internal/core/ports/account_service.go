package ports

import (
	"context"

	"github.com/newsproof/validation-api/internal/core/domain"
)

// AccountService registers and authenticates users.
type AccountService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}
