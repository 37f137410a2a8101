package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/payment"
	"github.com/pontdesarts/lovelock/internal/pricing"
	"github.com/pontdesarts/lovelock/internal/queue"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// Mutation names the single lock transition a completed payment maps
// to. The webhook reconciler computes the mutation as pure data first
// (see transition) and applies it second, so the per-kind rules are
// testable without persistence.
type Mutation int

const (
	MutActivate Mutation = iota
	MutTransfer
	MutBoost
	MutSetMedia
	MutMediaUnlock
)

// Outcome is the effect of one completed payment: the lock mutation
// plus the side effects that accompany every kind except media-unlock
// (ledger row, confirmation notification).
type Outcome struct {
	Mutation   Mutation
	BoostUntil time.Time // set for MutBoost
	RecordTx   bool
	Notify     bool
}

// transition maps a completed payment to its Outcome. Pure: no I/O, no
// clock reads beyond the now argument.
func transition(p *CompletedPayment, now time.Time) (Outcome, error) {
	switch p.Kind {
	case model.TxNewPurchase:
		return Outcome{Mutation: MutActivate, RecordTx: true, Notify: true}, nil
	case model.TxResale:
		return Outcome{Mutation: MutTransfer, RecordTx: true, Notify: true}, nil
	case model.TxBoost:
		d, err := pricing.BoostDuration(p.BoostTier)
		if err != nil {
			return Outcome{}, fmt.Errorf("completed boost for lock %d: %w", p.LockID, err)
		}
		return Outcome{Mutation: MutBoost, BoostUntil: now.Add(d), RecordTx: true, Notify: true}, nil
	case model.TxMediaUpgrade:
		if _, err := pricing.MediaPrice(p.MediaType); err != nil {
			return Outcome{}, fmt.Errorf("completed media upgrade for lock %d: %w", p.LockID, err)
		}
		return Outcome{Mutation: MutSetMedia, RecordTx: true, Notify: true}, nil
	case model.TxMediaUnlock:
		return Outcome{Mutation: MutMediaUnlock}, nil
	}
	return Outcome{}, fmt.Errorf("unknown transaction kind %q", p.Kind)
}

// Reconciler consumes verified payment-provider events and advances
// lock and ledger state. Every event id is claimed in the webhook_events
// ledger before its transition runs and completed after it applied; a
// duplicate delivery is acknowledged without effect, a failed apply
// releases the claim and propagates the error so the provider
// redelivers, and a claim left behind by a crashed run goes stale and
// is taken over by a later redelivery.
type Reconciler struct {
	provider string // ledger namespace, e.g. "stripe"
	locks    LockStore
	txs      TransactionStore
	events   EventLedger
	promos   PromoStore
	notifier Notifier
}

// NewReconciler wires a Reconciler. notifier may be nil to disable
// confirmations (tests, local runs without a broker).
func NewReconciler(provider string, locks LockStore, txs TransactionStore, events EventLedger, promos PromoStore, notifier Notifier) *Reconciler {
	return &Reconciler{provider: provider, locks: locks, txs: txs, events: events, promos: promos, notifier: notifier}
}

// HandleEvent processes one verified webhook event. Returning a non-nil
// error tells the handler to answer non-2xx so the event is redelivered;
// persistence failures are therefore never swallowed here. Structurally
// unparseable metadata is the one permanent failure: no redelivery can
// ever fix it, so it is logged and acknowledged instead of retried
// forever.
func (r *Reconciler) HandleEvent(ctx context.Context, ev *payment.Event) error {
	if ev.Kind == "" {
		// Event type this backend does not subscribe to; acknowledge.
		return nil
	}
	p, err := parseCompleted(ev.Metadata)
	if err != nil {
		log.Printf("reconcile: event %s dropped, %v", ev.ID, err)
		return nil
	}

	fresh, err := r.events.Claim(ctx, r.provider, ev.ID, ev.Kind)
	if err != nil {
		return fmt.Errorf("claim event %s: %w", ev.ID, err)
	}
	if !fresh {
		log.Printf("reconcile: duplicate delivery of event %s ignored", ev.ID)
		return nil
	}

	var applyErr error
	switch ev.Kind {
	case payment.EventCompleted:
		applyErr = r.applyCompleted(ctx, ev, p)
	case payment.EventExpired:
		applyErr = r.applyExpired(ctx, p)
	}
	if applyErr != nil {
		// Release the claim so the redelivery is not treated as a
		// duplicate of a run that never finished.
		if uErr := r.events.Unclaim(ctx, r.provider, ev.ID); uErr != nil {
			log.Printf("reconcile: unclaim of event %s failed: %v", ev.ID, uErr)
		}
		return applyErr
	}

	// The transition is already persisted; a failed stamp only risks a
	// redundant re-apply after the claim goes stale, which the
	// conditional statements absorb. Not worth a redelivery.
	if err := r.events.Complete(ctx, r.provider, ev.ID); err != nil {
		log.Printf("reconcile: complete of event %s failed: %v", ev.ID, err)
	}
	return nil
}

func (r *Reconciler) applyCompleted(ctx context.Context, ev *payment.Event, p *CompletedPayment) error {
	now := time.Now().UTC()
	out, err := transition(p, now)
	if err != nil {
		return err
	}

	switch out.Mutation {
	case MutActivate:
		var mediaType *string
		if p.MediaType != "" {
			mediaType = &p.MediaType
		}
		err = r.locks.ActivateOrRestore(ctx, repository.ActivatedLock{
			ID:          p.LockID,
			OwnerID:     p.BuyerID,
			Zone:        p.Zone,
			Finish:      p.Finish,
			PriceCents:  p.AmountCents,
			IsPrivate:   p.IsPrivate,
			ContentText: p.ContentText,
			MediaType:   mediaType,
		})
	case MutTransfer:
		err = r.locks.Transfer(ctx, p.LockID, p.BuyerID)
	case MutBoost:
		err = r.locks.SetBoost(ctx, p.LockID, p.BoostTier, out.BoostUntil)
	case MutSetMedia:
		err = r.locks.SetMediaType(ctx, p.LockID, p.MediaType)
	case MutMediaUnlock:
		err = r.locks.AddMediaUnlock(ctx, p.LockID, p.AmountCents)
	}
	if errors.Is(err, repository.ErrSlotUnavailable) {
		// A different event already advanced this lock past the state
		// our transition expects. Re-applying would double-credit;
		// acknowledge and leave the lock alone.
		log.Printf("reconcile: event %s (%s, lock %d) arrived after the lock advanced; skipped",
			ev.ID, p.Kind, p.LockID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply %s for lock %d: %w", p.Kind, p.LockID, err)
	}

	if out.RecordTx {
		if err := r.txs.Create(ctx, &model.Transaction{
			LockID:      p.LockID,
			BuyerID:     p.BuyerID,
			Kind:        p.Kind,
			AmountCents: p.AmountCents,
		}); err != nil {
			return fmt.Errorf("record transaction for lock %d: %w", p.LockID, err)
		}
	}

	if p.Kind == model.TxNewPurchase && p.PromoCode != "" && r.promos != nil {
		// The charge already went through at the discounted amount, so
		// an exhausted counter is logged, not failed.
		if ok, err := r.promos.Redeem(ctx, p.PromoCode); err != nil {
			log.Printf("reconcile: redeem promo %q failed: %v", p.PromoCode, err)
		} else if !ok {
			log.Printf("reconcile: promo %q exhausted before redemption", p.PromoCode)
		}
	}

	if out.Notify && r.notifier != nil {
		// Best effort; a broker outage must not fail the webhook.
		if err := r.notifier.PublishPurchaseConfirmed(ctx, queue.PurchaseConfirmedEvent{
			LockID:      p.LockID,
			Kind:        p.Kind,
			BuyerID:     p.BuyerID,
			BuyerEmail:  p.BuyerEmail,
			AmountCents: p.AmountCents,
			Zone:        p.Zone,
			Finish:      p.Finish,
			ConfirmedAt: now.Format(time.RFC3339),
		}); err != nil {
			log.Printf("reconcile: confirmation for lock %d not sent: %v", p.LockID, err)
		}
	}
	return nil
}

func (r *Reconciler) applyExpired(ctx context.Context, p *CompletedPayment) error {
	if p.Kind != model.TxNewPurchase {
		// Only new purchases reserve ahead of payment; nothing to undo.
		return nil
	}
	deleted, err := r.locks.DeletePending(ctx, p.LockID)
	if err != nil {
		return fmt.Errorf("delete pending lock %d: %w", p.LockID, err)
	}
	if !deleted {
		log.Printf("reconcile: expired session for lock %d had no pending row", p.LockID)
	}
	return nil
}
