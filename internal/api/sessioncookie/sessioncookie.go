// Package sessioncookie centralizes session cookie behavior.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Policy names the cookie and decides its Secure flag.
type Policy struct {
	Name   string
	Secure bool
}

// Read returns the trimmed session cookie value when present.
func (p Policy) Read(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(p.Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Write sets the session cookie to expire with the session.
func (p Policy) Write(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (p Policy) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
