package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/api/metrics"
	"github.com/newsproof/validation-api/internal/api/sessioncookie"
	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

type AuthHandler struct {
	accounts   ports.AccountService
	sessions   ports.SessionService
	cookie     sessioncookie.Policy
	sessionTTL time.Duration
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

func NewAuthHandler(
	accounts ports.AccountService,
	sessions ports.SessionService,
	cookie sessioncookie.Policy,
	sessionTTL time.Duration,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		sessions:   sessions,
		cookie:     cookie,
		sessionTTL: sessionTTL,
		metrics:    m,
		log:        log,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"max=100"`
}

func (r *registerRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type authResponse struct {
	User *domain.User `json:"user"`
}

type statusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

// Register creates an account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.AuthAttempts.WithLabelValues("register", "invalid_input").Inc()
		return err
	}

	user, err := h.accounts.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.metrics.AuthAttempts.WithLabelValues("register", authResult(err)).Inc()
		return err
	}

	if err := h.startSession(c, user.ID); err != nil {
		return err
	}

	h.metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login checks credentials and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.AuthAttempts.WithLabelValues("login", "invalid_input").Inc()
		return err
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthAttempts.WithLabelValues("login", authResult(err)).Inc()
		return err
	}

	if err := h.startSession(c, user.ID); err != nil {
		return err
	}

	h.metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return c.JSON(http.StatusOK, authResponse{User: user})
}

// Status reports whether the request carries a valid session.
//
// @Summary      Session status
// @Tags         auth
// @Produce      json
// @Success      200  {object}  statusResponse
// @Router       /api/auth/status [get]
func (h *AuthHandler) Status(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, statusResponse{Authenticated: user != nil, User: user})
}

// Logout revokes the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, ok := sessionToken(c); ok {
		if err := h.sessions.RevokeSession(c.Request().Context(), token); err != nil {
			return err
		}
		h.metrics.SessionsRevoked.Inc()
	}

	h.cookie.Clear(c)
	return c.JSON(http.StatusOK, logoutResponse{Success: true})
}

// startSession replaces any session the browser already holds with a fresh
// one for userID.
func (h *AuthHandler) startSession(c echo.Context, userID int64) error {
	ctx := c.Request().Context()

	if old, ok := sessionToken(c); ok {
		h.revokeQuietly(ctx, old)
	}

	session, err := h.sessions.CreateSession(ctx, userID, h.sessionTTL)
	if err != nil {
		return err
	}

	h.cookie.Write(c, session.Token, session.ExpiresAt)
	return nil
}

func (h *AuthHandler) revokeQuietly(ctx context.Context, token string) {
	if err := h.sessions.RevokeSession(ctx, token); err != nil {
		h.log.Warn().Err(err).Msg("failed to revoke previous session")
		return
	}
	h.metrics.SessionsRevoked.Inc()
}

func authResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
