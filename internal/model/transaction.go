package model

import "time"

// Transaction kinds.  The same values travel in checkout session
// metadata so the webhook reconciler can replay them verbatim.
const (
	TxNewPurchase  = "NEW_PURCHASE"
	TxBoost        = "BOOST"
	TxResale       = "MARKETPLACE_RESALE"
	TxMediaUpgrade = "MEDIA_UPGRADE"
	TxMediaUnlock  = "MEDIA_UNLOCK"
)

// Transaction is an append-only ledger row recording a confirmed
// payment against a lock.  Rows are never updated after insertion.
//
// Fields:
//  ID          – primary key identifier.
//  LockID      – lock the payment concerns.
//  BuyerID     – user who paid.
//  Kind        – one of the Tx* constants.
//  AmountCents – amount charged, in cents.
//  CreatedAt   – insertion timestamp.
type Transaction struct {
	ID          uint64    // transactions.id
	LockID      uint64    // transactions.lock_id
	BuyerID     string    // transactions.buyer_id
	Kind        string    // transactions.kind
	AmountCents int64     // transactions.amount_cents
	CreatedAt   time.Time // transactions.created_at
}

// ValidTxKind reports whether k is a known transaction kind.
func ValidTxKind(k string) bool {
	switch k {
	case TxNewPurchase, TxBoost, TxResale, TxMediaUpgrade, TxMediaUnlock:
		return true
	}
	return false
}
