// Package payment wraps the hosted-checkout payment processor behind
// small interfaces so services and handlers can be exercised with fakes
// in tests. The only concrete implementation talks to Stripe.
package payment

import (
	"context"
	"errors"
)

// Event kinds the reconciler acts on. Anything else the provider sends
// is acknowledged and ignored.
const (
	EventCompleted = "completed"
	EventExpired   = "expired"
)

// ErrSignature is returned when a webhook payload fails signature
// verification. Fatal for the request: no state change, reject.
var ErrSignature = errors.New("webhook signature verification failed")

// SessionRequest describes one hosted-checkout session to open. The
// metadata must carry everything the webhook reconciler needs (kind,
// lock id, buyer, kind-specific parameters); the reconciler never
// re-derives business data from the database.
type SessionRequest struct {
	Kind        string            // transaction kind, one of model.Tx*
	LockID      uint64            // lock the charge concerns
	BuyerID     string            // paying user
	BuyerEmail  string            // prefilled on the hosted page
	AmountCents int64             // charge amount in cents
	Description string            // line-item label shown to the buyer
	Metadata    map[string]string // kind-specific extras (tier, media type, promo...)
}

// Session is the provider's answer: an id for correlation and the URL
// the client is redirected to.
type Session struct {
	ID  string
	URL string
}

// Event is a verified, normalized webhook delivery.
type Event struct {
	ID        string            // provider's unique event id, dedup key
	Kind      string            // EventCompleted, EventExpired or "" for ignored types
	SessionID string            // checkout session the event concerns
	Metadata  map[string]string // metadata round-tripped from SessionRequest
}

// Provider opens hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// Verifier authenticates and parses raw webhook deliveries.
type Verifier interface {
	ParseEvent(payload []byte, sigHeader string) (*Event, error)
}
