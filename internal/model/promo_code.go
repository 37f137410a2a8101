package model

import "time"

// PromoCode is a percentage discount applied to new-purchase checkouts.
// Codes are redeemed (uses incremented) only after the payment is
// confirmed by the webhook, never at session creation.
//
// Fields:
//  Code       – the code as entered by the buyer, stored upper-case.
//  PercentOff – discount percentage, 1..100.
//  MaxUses    – redemption ceiling; 0 means unlimited.
//  Uses       – redemptions so far.
//  ExpiresAt  – last valid instant (nullable = never expires).
//  Active     – kill switch for a code.
type PromoCode struct {
	ID         uint64     // promo_codes.id
	Code       string     // promo_codes.code
	PercentOff int        // promo_codes.percent_off
	MaxUses    int        // promo_codes.max_uses
	Uses       int        // promo_codes.uses
	ExpiresAt  *time.Time // promo_codes.expires_at (nullable)
	Active     bool       // promo_codes.active
}

// Usable reports whether the code can still discount a checkout at the
// given instant.
func (p *PromoCode) Usable(now time.Time) bool {
	if !p.Active || p.PercentOff <= 0 || p.PercentOff > 100 {
		return false
	}
	if p.MaxUses > 0 && p.Uses >= p.MaxUses {
		return false
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
		return false
	}
	return true
}
