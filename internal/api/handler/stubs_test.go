package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/newsproof/validation-api/internal/api/metrics"
	"github.com/newsproof/validation-api/internal/api/sessioncookie"
	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

type stubAccountService struct {
	registerFn     func(ctx context.Context, email, password, name string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
}

func (s *stubAccountService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.registerFn(ctx, email, password, name)
}

func (s *stubAccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

type stubSessionService struct {
	created []int64
	revoked []string
	token   string
	expires time.Time

	createErr error
	revokeErr error
}

func (s *stubSessionService) CreateSession(_ context.Context, userID int64, _ time.Duration) (*domain.Session, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, userID)
	return &domain.Session{Token: s.token, UserID: userID, ExpiresAt: s.expires}, nil
}

func (s *stubSessionService) ValidateSession(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUnauthenticated
}

func (s *stubSessionService) RevokeSession(_ context.Context, token string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *stubSessionService) PurgeExpired(context.Context) (int64, error) { return 0, nil }

type stubValidationService struct {
	fn func(ctx context.Context, in ports.AnalyzeInput) (*domain.Analysis, error)
}

func (s *stubValidationService) Analyze(ctx context.Context, in ports.AnalyzeInput) (*domain.Analysis, error) {
	return s.fn(ctx, in)
}

var testCookie = sessioncookie.Policy{Name: "sid"}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}
