package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider and Verifier against Stripe's
// hosted checkout. Sessions expire after the same window as the
// reservation hold so an abandoned page and its PENDING row lapse
// together.
type StripeProvider struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	sessionTTL    time.Duration
}

// NewStripeProvider configures the global Stripe key and returns a
// provider. successURL and cancelURL are where the hosted page sends
// the buyer afterwards.
func NewStripeProvider(apiKey, webhookSecret, successURL, cancelURL string, sessionTTL time.Duration) *StripeProvider {
	stripe.Key = apiKey
	if sessionTTL < 30*time.Minute {
		// Stripe rejects checkout sessions expiring sooner than 30m.
		sessionTTL = 30 * time.Minute
	}
	return &StripeProvider{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		sessionTTL:    sessionTTL,
	}
}

// CreateCheckoutSession opens a payment-mode checkout session with one
// line item and the reconciler's metadata attached.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
		ExpiresAt:  stripe.Int64(time.Now().Add(p.sessionTTL).Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Description),
				},
			},
		}},
	}
	params.Context = ctx
	if req.BuyerEmail != "" {
		params.CustomerEmail = stripe.String(req.BuyerEmail)
	}
	params.AddMetadata("kind", req.Kind)
	params.AddMetadata("lock_id", strconv.FormatUint(req.LockID, 10))
	params.AddMetadata("buyer_id", req.BuyerID)
	params.AddMetadata("buyer_email", req.BuyerEmail)
	params.AddMetadata("amount_cents", strconv.FormatInt(req.AmountCents, 10))
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// ParseEvent verifies the Stripe-Signature header against the shared
// webhook secret and normalizes the event. Verification failure of any
// kind maps to ErrSignature; unhandled event types come back with an
// empty Kind so the caller can acknowledge them without acting.
func (p *StripeProvider) ParseEvent(payload []byte, sigHeader string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	out := &Event{ID: ev.ID}
	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		out.Kind = EventCompleted
	case stripe.EventTypeCheckoutSessionExpired:
		out.Kind = EventExpired
	default:
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("stripe: decode checkout session from event %s: %w", ev.ID, err)
	}
	out.SessionID = cs.ID
	out.Metadata = cs.Metadata
	return out, nil
}
