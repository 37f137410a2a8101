package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/middleware"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// ProfileHandler owns GET /v1/me, the caller's mirrored identity
// record.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(p *repository.ProfileRepo) *ProfileHandler {
	if p == nil {
		panic("nil repository passed to NewProfileHandler")
	}
	return &ProfileHandler{Profiles: p}
}

// Me handles GET /v1/me. The mirror row is created lazily on first
// checkout, so a user who never bought anything has no profile yet.
func (h *ProfileHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Profiles.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no profile yet"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": p})
}
