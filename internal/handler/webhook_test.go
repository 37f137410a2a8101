package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontdesarts/lovelock/internal/payment"
	"github.com/pontdesarts/lovelock/internal/service"
)

type stubVerifier struct {
	event *payment.Event
	err   error
}

func (s *stubVerifier) ParseEvent(_ []byte, _ string) (*payment.Event, error) {
	return s.event, s.err
}

type stubLedger struct {
	err error
}

func (s *stubLedger) Claim(_ context.Context, _, _, _ string) (bool, error) {
	return false, s.err
}

func (s *stubLedger) Complete(_ context.Context, _, _ string) error { return nil }

func (s *stubLedger) Unclaim(_ context.Context, _, _ string) error { return nil }

func postWebhook(t *testing.T, h *WebhookHandler) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payment", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	require.NoError(t, h.Receive(e.NewContext(req, rec)))
	return rec
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	v := &stubVerifier{err: payment.ErrSignature}
	h := NewWebhookHandler(v, service.NewReconciler("stripe", nil, nil, nil, nil, nil))

	rec := postWebhook(t, h)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid signature")
}

func TestWebhookRejectsMalformedEvent(t *testing.T) {
	v := &stubVerifier{err: errors.New("unexpected end of JSON input")}
	h := NewWebhookHandler(v, service.NewReconciler("stripe", nil, nil, nil, nil, nil))

	rec := postWebhook(t, h)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed event")
}

func TestWebhookAcksIgnoredEventTypes(t *testing.T) {
	// An event type this backend does not subscribe to parses to an
	// empty kind and must be acknowledged so Stripe stops resending it.
	v := &stubVerifier{event: &payment.Event{ID: "evt_1", Kind: ""}}
	h := NewWebhookHandler(v, service.NewReconciler("stripe", nil, nil, nil, nil, nil))

	rec := postWebhook(t, h)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
}

func TestWebhookAnswers500OnProcessingFailure(t *testing.T) {
	// A persistence failure must produce a non-2xx so the provider
	// redelivers the event.
	v := &stubVerifier{event: &payment.Event{ID: "evt_1", Kind: payment.EventCompleted,
		Metadata: map[string]string{
			"kind": "NEW_PURCHASE", "lock_id": "42", "buyer_id": "user-1", "amount_cents": "4998",
		}}}
	ledger := &stubLedger{err: errors.New("mysql gone away")}
	h := NewWebhookHandler(v, service.NewReconciler("stripe", nil, nil, ledger, nil, nil))

	rec := postWebhook(t, h)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "processing failed")
}
