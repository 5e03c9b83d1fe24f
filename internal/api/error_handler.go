package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/newsproof/validation-api/internal/core/domain"
)

// validationPrefix marks routes whose clients read errors[0].msg.
const validationPrefix = "/api/validation"

// errorResponse is the envelope for auth and infrastructure routes.
type errorResponse struct {
	Error string `json:"error"`
}

type errorItem struct {
	Msg string `json:"msg"`
}

// errorListResponse is the envelope for /api/validation routes.
type errorListResponse struct {
	Errors []errorItem `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": msg}, or {"errors": [{"msg": msg}]} under /api/validation.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		var body any = errorResponse{Error: msg}
		if strings.HasPrefix(c.Request().URL.Path, validationPrefix) {
			body = errorListResponse{Errors: []errorItem{{Msg: msg}}}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, inputErr.Msg
	}

	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		log.Warn().
			Int("upstream_status", gwErr.StatusCode).
			Str("path", c.Path()).
			Msg(gwErr.Msg)
		return http.StatusBadGateway, gwErr.Msg
	}

	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "an account with this email already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many login attempts, try again later"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
