package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/service"
)

// AvailabilityHandler owns GET /v1/locks/availability.
type AvailabilityHandler struct {
	Availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(s *service.AvailabilityService) *AvailabilityHandler {
	if s == nil {
		panic("nil service passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Availability: s}
}

// Check handles GET /v1/locks/availability?lockId=N. The response is
// {available, status, price}; price appears only for resale listings.
// Sits behind the response cache with a short TTL.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	id, err := strconv.ParseUint(c.QueryParam("lockId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lockId"})
	}
	avail, err := h.Availability.Check(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, avail)
}
