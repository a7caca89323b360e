package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shivenk/gatepass/internal/gate"
)

// storeTimeout bounds every store call made from a handler. Requests
// are short, single-round-trip operations; anything slower is treated
// as a storage failure.
const storeTimeout = 5 * time.Second

// reqCtx derives a bounded context from the incoming request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// currentUsername extracts the acting operator's username stored in the
// context by the JWT middleware.
func currentUsername(c echo.Context) string {
	if v, ok := c.Get("username").(string); ok {
		return v
	}
	return ""
}

// coreError maps the core's error taxonomy onto an HTTP response:
// validation failures are the caller's fault (400), storage failures are
// transient and retryable (503), anything else is a plain server error.
func coreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gate.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, gate.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
