package model

import "time"

// WebhookEvent records a payment-provider event for idempotent webhook
// handling.  The (provider, provider_event_id) pair is unique, so a
// redelivered event inserts zero rows and the reconciler can
// acknowledge it without re-applying any transition.  CompletedAt is
// stamped after the transition applied; a row claimed long ago but
// never completed marks a run that died mid-apply and is reprocessed
// on redelivery.
type WebhookEvent struct {
	ID              uint64     // webhook_events.id
	Provider        string     // webhook_events.provider (e.g. "stripe")
	ProviderEventID string     // webhook_events.provider_event_id
	EventType       string     // webhook_events.event_type
	ClaimedAt       time.Time  // webhook_events.claimed_at
	CompletedAt     *time.Time // webhook_events.completed_at (nullable)
}
