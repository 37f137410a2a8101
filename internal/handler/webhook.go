package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/payment"
	"github.com/pontdesarts/lovelock/internal/service"
)

// maxWebhookBody bounds the raw payload read; Stripe events are far
// smaller than this.
const maxWebhookBody = 1 << 20

// WebhookHandler owns POST /v1/webhooks/payment. The body must be read
// raw (no binding) because the signature covers the exact bytes sent.
type WebhookHandler struct {
	Verifier   payment.Verifier
	Reconciler *service.Reconciler
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(v payment.Verifier, r *service.Reconciler) *WebhookHandler {
	if v == nil || r == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Verifier: v, Reconciler: r}
}

// Receive verifies and reconciles one provider event. Signature
// failures are final: 400, no state change, the provider will not
// retry a rejected signature. Processing failures answer 500 with the
// error so the provider redelivers the event later.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}

	ev, err := h.Verifier.ParseEvent(body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrSignature) {
			c.Logger().Warnf("webhook: signature rejected: %v", err)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed event"})
	}

	if err := h.Reconciler.HandleEvent(c.Request().Context(), ev); err != nil {
		c.Logger().Errorf("webhook: event %s failed: %v", ev.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
