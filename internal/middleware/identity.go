package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// callerKey returns the authenticated user id as a string, or "anon"
// on public routes.  It keys rate-limit buckets.
func callerKey(c echo.Context) string {
	if id, ok := c.Get(CtxUserID).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
