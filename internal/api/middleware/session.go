package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/newsproof/validation-api/internal/api/metrics"
	"github.com/newsproof/validation-api/internal/api/sessioncookie"
	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

const (
	// ContextUserKey holds the *domain.User of an authenticated request.
	ContextUserKey = "user"
	// ContextSessionTokenKey holds the validated session token.
	ContextSessionTokenKey = "session_token"
)

// Session resolves the session cookie on every request. Requests without a
// valid session continue anonymously and a stale cookie is cleared; only
// storage failures abort the request.
func Session(sessions ports.SessionService, cookie sessioncookie.Policy, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := cookie.Read(c)
			if !ok {
				m.SessionLookups.WithLabelValues("anonymous").Inc()
				return next(c)
			}

			user, err := sessions.ValidateSession(c.Request().Context(), token)
			switch {
			case err == nil:
				c.Set(ContextUserKey, user)
				c.Set(ContextSessionTokenKey, token)
				m.SessionLookups.WithLabelValues("authenticated").Inc()
			case errors.Is(err, domain.ErrUnauthenticated):
				cookie.Clear(c)
				m.SessionLookups.WithLabelValues("anonymous").Inc()
			default:
				m.SessionLookups.WithLabelValues("error").Inc()
				return err
			}

			return next(c)
		}
	}
}
