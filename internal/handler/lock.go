package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/middleware"
	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// LockHandler groups the public lock pages and the owner actions
// (listing owned locks, managing resale listings).
type LockHandler struct {
	LockRepo *repository.LockRepo
	TxRepo   *repository.TransactionRepo
}

// NewLockHandler constructs a LockHandler.
func NewLockHandler(locks *repository.LockRepo, txs *repository.TransactionRepo) *LockHandler {
	if locks == nil || txs == nil {
		panic("nil repository passed to NewLockHandler")
	}
	return &LockHandler{LockRepo: locks, TxRepo: txs}
}

// PublicLock is the sanitized view of a lock. Private locks expose
// their number and cosmetics but hide the engraving and media URL;
// media can still be unlocked through checkout.
type PublicLock struct {
	ID          uint64  `json:"id"`
	Zone        string  `json:"zone"`
	Finish      string  `json:"finish"`
	Status      string  `json:"status"`
	IsPrivate   bool    `json:"is_private"`
	ContentText string  `json:"content_text,omitempty"`
	MediaType   *string `json:"media_type,omitempty"`
	MediaURL    *string `json:"media_url,omitempty"`
	ResalePrice *int64  `json:"resale_price,omitempty"`
	BoostTier   *string `json:"boost_tier,omitempty"`
	ViewCount   uint64  `json:"view_count"`
}

func publicView(l *model.Lock) PublicLock {
	out := PublicLock{
		ID:          l.ID,
		Zone:        l.Zone,
		Finish:      l.Finish,
		Status:      l.Status,
		IsPrivate:   l.IsPrivate,
		ResalePrice: l.GoldenAssetPriceCents,
		ViewCount:   l.ViewCount,
	}
	if now := time.Now().UTC(); l.BoostTier != nil && l.BoostUntil != nil && l.BoostUntil.After(now) {
		out.BoostTier = l.BoostTier
	}
	if !l.IsPrivate {
		out.ContentText = l.ContentText
		out.MediaType = l.MediaType
		out.MediaURL = l.MediaURL
	}
	return out
}

// Get handles GET /v1/locks/:id. PENDING rows are invisible publicly:
// until payment confirms, the number reads as if no lock existed.
func (h *LockHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lock id"})
	}
	lock, err := h.LockRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLockNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lock not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if lock.Status == model.StatusPending {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lock not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": publicView(lock)})
}

// Transactions handles GET /v1/locks/:id/transactions, the public
// purchase history of one lock.
func (h *LockHandler) Transactions(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lock id"})
	}
	items, err := h.TxRepo.ListByLock(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MyTransactions handles GET /v1/my-transactions, the caller's own
// purchase history, newest first.
func (h *LockHandler) MyTransactions(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.TxRepo.ListByBuyer(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MyLocks handles GET /v1/my-locks for the authenticated owner.
func (h *LockHandler) MyLocks(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.LockRepo.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type resaleRequest struct {
	PriceCents int64 `json:"price_cents"`
}

// ListForResale handles POST /v1/locks/:id/resale. Only the owner of an
// ACTIVE lock can list it; ownership is enforced in the conditional
// update, so a stale or hostile request affects zero rows.
func (h *LockHandler) ListForResale(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lock id"})
	}
	var body resaleRequest
	if err := c.Bind(&body); err != nil || body.PriceCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be positive"})
	}
	if err := h.LockRepo.SetResalePrice(c.Request().Context(), id, userID, &body.PriceCents); err != nil {
		if errors.Is(err, repository.ErrSlotUnavailable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lock not eligible for resale"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"listed": true, "price_cents": body.PriceCents})
}

// UnlistResale handles DELETE /v1/locks/:id/resale.
func (h *LockHandler) UnlistResale(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lock id"})
	}
	if err := h.LockRepo.SetResalePrice(c.Request().Context(), id, userID, nil); err != nil {
		if errors.Is(err, repository.ErrSlotUnavailable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lock not eligible"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"listed": false})
}
