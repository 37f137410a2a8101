package repository

import (
	"context"
	"database/sql"
)

// claimStaleAfterMinutes is how long a claimed-but-uncompleted event is
// trusted to still be in flight. A crash between claiming an event and
// completing it leaves the row uncompleted forever; once the window
// passes, a redelivery of the same event takes the claim over and
// re-applies the transition instead of being dropped as a duplicate.
// Appliers must finish well inside this window.
const claimStaleAfterMinutes = 5

// WebhookEventRepo records payment-provider events in two phases so a
// redelivered webhook is acknowledged without re-applying its
// transition. Claim inserts the row before the transition runs (the
// unique index over provider+provider_event_id arbitrates concurrent
// deliveries), Complete stamps it after the transition committed. A row
// that stays claimed past the stale window marks a run that died
// mid-apply and is handed to the next redelivery.
type WebhookEventRepo struct {
	db *sql.DB
}

// NewWebhookEventRepo returns a new WebhookEventRepo bound to the
// provided database.
func NewWebhookEventRepo(db *sql.DB) *WebhookEventRepo { return &WebhookEventRepo{db: db} }

// Claim takes an event id for processing. fresh=true means this caller
// owns the event and must apply its transition: either the INSERT won
// (first delivery) or an earlier claim went stale without completing
// (the claimant crashed) and this call took it over. fresh=false means
// the event was already completed, or another live claimant holds it.
func (r *WebhookEventRepo) Claim(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO webhook_events (provider, provider_event_id, event_type)
         VALUES (?, ?, ?)`,
		provider, eventID, eventType,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	// Row exists. Take it over only if it was never completed and its
	// claim lapsed; the conditional UPDATE lets exactly one redelivery
	// win the takeover.
	res, err = r.db.ExecContext(ctx,
		`UPDATE webhook_events SET claimed_at = UTC_TIMESTAMP()
         WHERE provider = ? AND provider_event_id = ? AND completed_at IS NULL
           AND claimed_at <= UTC_TIMESTAMP() - INTERVAL ? MINUTE`,
		provider, eventID, claimStaleAfterMinutes,
	)
	if err != nil {
		return false, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Complete stamps a claimed event after its transition was applied.
// From here on every redelivery is a duplicate.
func (r *WebhookEventRepo) Complete(ctx context.Context, provider, eventID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE webhook_events SET completed_at = UTC_TIMESTAMP()
         WHERE provider = ? AND provider_event_id = ?`,
		provider, eventID,
	)
	return err
}

// Unclaim releases a claimed event id after its transition failed, so
// the provider's redelivery is processed as a first delivery instead of
// waiting out the stale window.
func (r *WebhookEventRepo) Unclaim(ctx context.Context, provider, eventID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM webhook_events WHERE provider = ? AND provider_event_id = ? AND completed_at IS NULL`,
		provider, eventID,
	)
	return err
}
