package ports

import (
	"context"

	"github.com/newsproof/validation-api/internal/core/domain"
)

// AnalyzeInput is the DTO passed from the transport layer to ValidationService.
type AnalyzeInput struct {
	Text   string
	Source string // optional
	UserID *int64 // nil for anonymous callers
}

// ValidationGateway is the external classification engine.
type ValidationGateway interface {
	// Analyze returns *domain.GatewayError for any upstream failure.
	Analyze(ctx context.Context, text string, source *string) (*domain.Analysis, error)
}

// ValidationService runs text through the gateway and records the outcome.
type ValidationService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*domain.Analysis, error)
}
