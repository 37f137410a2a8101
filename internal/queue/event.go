// Package queue defines message payloads exchanged over the message broker.
package queue

// PurchaseConfirmedEvent is published after the webhook reconciler
// finalizes a payment. It carries enough information for downstream
// consumers (confirmation email, analytics) without querying the
// primary database.
type PurchaseConfirmedEvent struct {
	LockID      uint64 `json:"lock_id"`
	Kind        string `json:"kind"`
	BuyerID     string `json:"buyer_id"`
	BuyerEmail  string `json:"buyer_email"`
	AmountCents int64  `json:"amount_cents"`
	Zone        string `json:"zone,omitempty"`
	Finish      string `json:"finish,omitempty"`
	ConfirmedAt string `json:"confirmed_at"`
}
