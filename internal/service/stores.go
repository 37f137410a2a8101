// Package service implements the checkout, reconciliation, reaping and
// availability flows on top of the repository layer. Services depend on
// the narrow store interfaces below rather than concrete repositories
// so tests can substitute fakes without a database.
package service

import (
	"context"
	"time"

	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/queue"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// LockStore is the subset of repository.LockRepo the services use.
type LockStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Lock, error)
	UpsertPending(ctx context.Context, p repository.PendingLock) error
	ActivateOrRestore(ctx context.Context, a repository.ActivatedLock) error
	DeletePending(ctx context.Context, id uint64) (bool, error)
	ReapExpired(ctx context.Context) ([]uint64, error)
	Transfer(ctx context.Context, id uint64, newOwnerID string) error
	SetBoost(ctx context.Context, id uint64, tier string, until time.Time) error
	SetMediaType(ctx context.Context, id uint64, mediaType string) error
	AddMediaUnlock(ctx context.Context, id uint64, feeCents int64) error
}

// TransactionStore appends to the payment ledger.
type TransactionStore interface {
	Create(ctx context.Context, t *model.Transaction) error
}

// EventLedger deduplicates webhook deliveries by provider event id.
// Claim is taken before the transition runs, Complete is stamped after
// it applied; a claim that is never completed is handed to a later
// redelivery instead of staying swallowed.
type EventLedger interface {
	Claim(ctx context.Context, provider, eventID, eventType string) (bool, error)
	Complete(ctx context.Context, provider, eventID string) error
	Unclaim(ctx context.Context, provider, eventID string) error
}

// PromoStore validates and redeems discount codes.
type PromoStore interface {
	GetActive(ctx context.Context, code string) (*model.PromoCode, error)
	Redeem(ctx context.Context, code string) (bool, error)
}

// ProfileStore mirrors identity-provider users locally.
type ProfileStore interface {
	Upsert(ctx context.Context, p *model.Profile) error
}

// Notifier delivers best-effort purchase confirmations. The default
// implementation publishes to RabbitMQ.
type Notifier interface {
	PublishPurchaseConfirmed(ctx context.Context, ev queue.PurchaseConfirmedEvent) error
}

// QueueNotifier is the production Notifier backed by the broker.
type QueueNotifier struct{}

func (QueueNotifier) PublishPurchaseConfirmed(ctx context.Context, ev queue.PurchaseConfirmedEvent) error {
	return queue.PublishPurchaseConfirmed(ctx, ev)
}
