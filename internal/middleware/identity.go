package middleware

// identity.go defines helper functions shared across middleware files. It
// provides the operator identity used in cache and rate-limit keys: the
// username JWTAuth stored in the Echo context, or "anon" for
// unauthenticated requests.

import (
	"github.com/labstack/echo/v4"
)

// currentOperator extracts the acting operator's username from context.
// It returns "anon" when no operator is authenticated.
func currentOperator(c echo.Context) string {
	if v := c.Get("username"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
