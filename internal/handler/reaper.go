package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/service"
)

// ReaperHandler exposes the sweep as an endpoint for external cron
// runners, alongside the in-process ticker. Both paths call the same
// service and are safe to overlap.
type ReaperHandler struct {
	Reaper *service.Reaper
}

// NewReaperHandler constructs a ReaperHandler.
func NewReaperHandler(r *service.Reaper) *ReaperHandler {
	if r == nil {
		panic("nil service passed to NewReaperHandler")
	}
	return &ReaperHandler{Reaper: r}
}

// Sweep handles POST /v1/internal/reaper/sweep, guarded by the cron
// secret middleware.
func (h *ReaperHandler) Sweep(c echo.Context) error {
	res, err := h.Reaper.Sweep(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("removed %d expired reservations", res.Count),
		"count":   res.Count,
		"ids":     res.IDs,
	})
}
