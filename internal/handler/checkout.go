// Package handler exposes the HTTP surface: checkout initiation, the
// payment webhook, availability lookup, public lock pages, owner
// actions, admin moderation and the reaper trigger.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/middleware"
	"github.com/pontdesarts/lovelock/internal/pricing"
	"github.com/pontdesarts/lovelock/internal/repository"
	"github.com/pontdesarts/lovelock/internal/service"
)

// CheckoutHandler owns POST /v1/checkout/session.
type CheckoutHandler struct {
	Checkout *service.CheckoutService
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(s *service.CheckoutService) *CheckoutHandler {
	if s == nil {
		panic("nil service passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Checkout: s}
}

type checkoutRequest struct {
	Type         string `json:"type"`
	LockID       uint64 `json:"lockId"`
	Zone         string `json:"zone"`
	Finish       string `json:"skin"`
	MediaType    string `json:"mediaType"`
	ContentText  string `json:"contentText"`
	CustomNumber bool   `json:"customNumber"`
	IsPrivate    bool   `json:"isPrivate"`
	BoostTier    string `json:"boostTier"`
	PromoCode    string `json:"promoCode"`
}

// CreateSession handles POST /v1/checkout/session. The buyer identity
// comes from the verified token, never from the body. On success the
// response carries the hosted payment page URL the client redirects to.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body checkoutRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	url, err := h.Checkout.CreateSession(c.Request().Context(), service.CheckoutRequest{
		Kind:         body.Type,
		LockID:       body.LockID,
		Zone:         body.Zone,
		Finish:       body.Finish,
		MediaType:    body.MediaType,
		ContentText:  body.ContentText,
		CustomNumber: body.CustomNumber,
		IsPrivate:    body.IsPrivate,
		BoostTier:    body.BoostTier,
		PromoCode:    body.PromoCode,
		BuyerID:      userID,
		BuyerEmail:   middleware.Email(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrInvalidConfiguration):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid configuration"})
		case errors.Is(err, repository.ErrSlotUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot unavailable"})
		case errors.Is(err, repository.ErrLockNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lock not found"})
		case errors.Is(err, service.ErrPaymentProvider):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider error"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
