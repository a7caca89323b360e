package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shivenk/gatepass/internal/config"
	"github.com/shivenk/gatepass/internal/repository"
)

// AdminHandler serves the admin console: operator rosters, session
// audits and password resets.
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Sessions: s}
}

var validShifts = map[string]bool{"morning": true, "evening": true, "night": true}

// Guards lists guard usernames, optionally restricted to one shift.
func (h *AdminHandler) Guards(c echo.Context) error {
	shift := strings.ToLower(strings.TrimSpace(c.QueryParam("shift")))
	if shift != "" && !validShifts[shift] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shift must be morning, evening or night"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	guards, err := h.Users.UsernamesByRole(ctx, "guard", shift)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"guards": guards})
}

// Admins lists admin usernames.
func (h *AdminHandler) Admins(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	admins, err := h.Users.UsernamesByRole(ctx, "admin", "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"admins": admins})
}

// ListSessions lists guard login sessions, newest first.
func (h *AdminHandler) ListSessions(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	sessions, err := h.Sessions.ListNonAdmin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": sessions})
}

type resetPasswordReq struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

// ResetPassword replaces the stored hash for the named operator.
func (h *AdminHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and new_password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Users.ResetPassword(ctx, req.Username, req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset successfully"})
}
