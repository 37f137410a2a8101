package service

import (
	"fmt"
	"strconv"

	"github.com/pontdesarts/lovelock/internal/model"
)

// Metadata keys packed into the checkout session and round-tripped
// through the provider's webhook. The reconciler acts on these alone
// and never re-derives business data.
const (
	metaKind        = "kind"
	metaLockID      = "lock_id"
	metaBuyerID     = "buyer_id"
	metaBuyerEmail  = "buyer_email"
	metaAmountCents = "amount_cents"
	metaZone        = "zone"
	metaFinish      = "finish"
	metaContent     = "content_text"
	metaIsPrivate   = "is_private"
	metaMediaType   = "media_type"
	metaBoostTier   = "boost_tier"
	metaPromoCode   = "promo_code"
)

// CompletedPayment is the decoded metadata of a completed checkout
// session.
type CompletedPayment struct {
	Kind        string
	LockID      uint64
	BuyerID     string
	BuyerEmail  string
	AmountCents int64
	Zone        string
	Finish      string
	ContentText string
	IsPrivate   bool
	MediaType   string
	BoostTier   string
	PromoCode   string
}

// parseCompleted decodes and validates session metadata. A session this
// backend created always carries a known kind, a lock id in range and a
// buyer; anything else is a malformed event and is rejected before any
// state change.
func parseCompleted(meta map[string]string) (*CompletedPayment, error) {
	p := &CompletedPayment{
		Kind:        meta[metaKind],
		BuyerID:     meta[metaBuyerID],
		BuyerEmail:  meta[metaBuyerEmail],
		Zone:        meta[metaZone],
		Finish:      meta[metaFinish],
		ContentText: meta[metaContent],
		MediaType:   meta[metaMediaType],
		BoostTier:   meta[metaBoostTier],
		PromoCode:   meta[metaPromoCode],
	}
	if !model.ValidTxKind(p.Kind) {
		return nil, fmt.Errorf("event metadata: unknown kind %q", p.Kind)
	}
	id, err := strconv.ParseUint(meta[metaLockID], 10, 64)
	if err != nil || id == 0 || id > model.MaxLockID {
		return nil, fmt.Errorf("event metadata: bad lock_id %q", meta[metaLockID])
	}
	p.LockID = id
	if p.BuyerID == "" {
		return nil, fmt.Errorf("event metadata: missing buyer_id")
	}
	if amt, err := strconv.ParseInt(meta[metaAmountCents], 10, 64); err == nil {
		p.AmountCents = amt
	} else {
		return nil, fmt.Errorf("event metadata: bad amount_cents %q", meta[metaAmountCents])
	}
	p.IsPrivate = meta[metaIsPrivate] == "1"
	return p, nil
}
