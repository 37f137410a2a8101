package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// AdminHandler groups back-office moderation: banning and removing
// locks and inspecting the ledger. All routes behind it require the
// ADMIN role.
type AdminHandler struct {
	LockRepo *repository.LockRepo
	TxRepo   *repository.TransactionRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(locks *repository.LockRepo, txs *repository.TransactionRepo) *AdminHandler {
	if locks == nil || txs == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{LockRepo: locks, TxRepo: txs}
}

func (h *AdminHandler) setStatus(c echo.Context, status string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lock id"})
	}
	if err := h.LockRepo.SetStatus(c.Request().Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrLockNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lock not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// Ban handles POST /v1/admin/locks/:id/ban.
func (h *AdminHandler) Ban(c echo.Context) error { return h.setStatus(c, model.StatusBanned) }

// Unban handles POST /v1/admin/locks/:id/unban. A lock leaves BANNED
// back to ACTIVE; moderation never resurrects PENDING holds.
func (h *AdminHandler) Unban(c echo.Context) error { return h.setStatus(c, model.StatusActive) }

// Delete handles DELETE /v1/admin/locks/:id.
func (h *AdminHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lock id"})
	}
	if err := h.LockRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrLockNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lock not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Transactions handles GET /v1/admin/transactions?limit=N.
func (h *AdminHandler) Transactions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.TxRepo.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
