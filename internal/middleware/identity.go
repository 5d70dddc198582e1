package middleware

import "github.com/labstack/echo/v4"

// Context keys set by the JWT middlewares.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Guest is the identity of a request without a valid access token.
const Guest = "guest"

// UserID returns the token subject of the request, or Guest.
func UserID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok && v != "" {
		return v
	}
	return Guest
}

// Role returns the role claim of the request, or "".
func Role(c echo.Context) string {
	v, _ := c.Get(ctxRole).(string)
	return v
}
