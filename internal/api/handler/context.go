package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/newsproof/validation-api/internal/api/middleware"
	"github.com/newsproof/validation-api/internal/core/domain"
)

// currentUser returns the user resolved by the Session middleware, or nil for
// anonymous requests.
func currentUser(c echo.Context) *domain.User {
	u, _ := c.Get(middleware.ContextUserKey).(*domain.User)
	return u
}

// sessionToken returns the token the Session middleware validated for this
// request.
func sessionToken(c echo.Context) (string, bool) {
	token, _ := c.Get(middleware.ContextSessionTokenKey).(string)
	return token, token != ""
}
