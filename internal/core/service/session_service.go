package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

const (
	// sessionTokenBytes gives 256 bits of entropy per token.
	sessionTokenBytes = 32
	maxTokenAttempts  = 3
)

// SessionService manages session tokens backed by a SessionRepository.
type SessionService struct {
	repo   ports.SessionRepository
	now    func() time.Time
	random io.Reader
	log    zerolog.Logger
}

// SessionOption customises a SessionService.
type SessionOption func(*SessionService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithRandom overrides the token entropy source.
func WithRandom(r io.Reader) SessionOption {
	return func(s *SessionService) { s.random = r }
}

func NewSessionService(repo ports.SessionRepository, log zerolog.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		random: rand.Reader,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession issues a new token for userID valid for ttl. A non-positive
// ttl yields a session that is already expired.
func (s *SessionService) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*domain.Session, error) {
	if ttl < 0 {
		ttl = 0
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}

		now := s.now()
		session := &domain.Session{
			Token:     token,
			UserID:    userID,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		}

		err = s.repo.Create(ctx, session)
		if errors.Is(err, domain.ErrSessionExists) {
			s.log.Warn().Int("attempt", attempt+1).Msg("session token collision, regenerating")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return session, nil
	}

	return nil, fmt.Errorf("create session: %w", domain.ErrSessionExists)
}

func (s *SessionService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	session, user, err := s.repo.FindWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("validate session: %w", err)
	}

	if session.Status(s.now()) != domain.SessionActive {
		if err := s.repo.Delete(ctx, token); err != nil {
			s.log.Warn().Err(err).Int64("user_id", session.UserID).Msg("failed to delete expired session")
		}
		return nil, domain.ErrUnauthenticated
	}

	return withoutHash(user), nil
}

// RevokeSession deletes the session; unknown tokens are ignored.
func (s *SessionService) RevokeSession(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired session row and returns how many went.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}

func (s *SessionService) newToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
