package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

// LoginThrottle abstracts the failed-login counter (Redis or in-process).
type LoginThrottle interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type noThrottle struct{}

func (noThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noThrottle) RecordFailure(context.Context, string) error    { return nil }
func (noThrottle) Reset(context.Context, string) error            { return nil }

// AccountService implements registration and credential checks.
type AccountService struct {
	repo      ports.UserRepository
	throttle  LoginThrottle
	cost      int
	dummyHash []byte
	log       zerolog.Logger
}

// NewAccountService returns an AccountService hashing with the given bcrypt
// cost. An out-of-range cost falls back to bcrypt.DefaultCost; a nil throttle
// disables login throttling.
func NewAccountService(repo ports.UserRepository, throttle LoginThrottle, cost int, log zerolog.Logger) *AccountService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if throttle == nil {
		throttle = noThrottle{}
	}
	// Compared against when the email is unknown so both failure paths pay
	// for one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("no-such-account"), cost)
	return &AccountService{repo: repo, throttle: throttle, cost: cost, dummyHash: dummy, log: log}
}

func (s *AccountService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewInputError("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewInputError("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Msg("account registered")
	return withoutHash(created), nil
}

// Authenticate checks email and password. Unknown email and wrong password
// both yield domain.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewInputError("email and password are required")
	}

	key := throttleKey(email)
	blocked, err := s.throttle.Blocked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
	} else if blocked {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}
	return withoutHash(user), nil
}

func (s *AccountService) recordFailure(ctx context.Context, key string) {
	if err := s.throttle.RecordFailure(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func throttleKey(email string) string {
	return strings.ToLower(email)
}

func withoutHash(u *domain.User) *domain.User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
