package model

import "time"

// MaxLockID is the highest lock number on the bridge. Numbers are
// globally unique and never reused while a row exists.
const MaxLockID uint64 = 1_000_000

// Zone identifies the bridge area a lock hangs in.  Zones carry
// different base prices; see the pricing package for the tables.
const (
	ZoneStandard = "STANDARD"
	ZonePremium  = "PREMIUM"
	ZoneSky      = "SKY"
)

// Finish identifies the metal finish of a lock.
const (
	FinishBronze  = "BRONZE"
	FinishSilver  = "SILVER"
	FinishGold    = "GOLD"
	FinishDiamond = "DIAMOND"
)

// MediaType identifies the kind of media attached to a lock.
const (
	MediaPhoto = "PHOTO"
	MediaAudio = "AUDIO"
	MediaVideo = "VIDEO"
)

// Lock status values.  PENDING rows carry a pending_until timestamp
// and are deleted when it passes without a confirmed payment.
const (
	StatusPending  = "PENDING"
	StatusActive   = "ACTIVE"
	StatusBanned   = "BANNED"
	StatusReserved = "RESERVED"
)

// Boost tiers.  Each tier maps to a visibility window; durations and
// prices live in the pricing package.
const (
	BoostSpark   = "SPARK"
	BoostFlame   = "FLAME"
	BoostEternal = "ETERNAL"
)

// Lock represents one numbered slot on the virtual bridge.  A lock is
// created in PENDING state when a checkout session is opened and only
// becomes ACTIVE through a confirmed payment webhook.
//
// Fields:
//  ID                    – lock number, 1..1,000,000, primary key.
//  OwnerID               – owning user (nullable until purchase completes).
//  Zone                  – bridge zone (STANDARD, PREMIUM, SKY).
//  Finish                – metal finish tier.
//  Status                – PENDING, ACTIVE, BANNED or RESERVED.
//  PriceCents            – price paid (or quoted while pending), in cents.
//  IsPrivate             – when true, content and media are hidden publicly.
//  ContentText           – engraving text shown on the lock.
//  MediaType             – attached media kind (nullable).
//  MediaURL              – object-storage URL of the media (nullable).
//  GoldenAssetPriceCents – resale listing price; non-null means buyable.
//  BoostTier             – active boost tier (nullable).
//  BoostUntil            – boost expiry (nullable).
//  PendingUntil          – reservation hold expiry; set iff Status==PENDING.
//  ViewCount             – media unlock views accumulated.
//  MediaEarningsCents    – unlock fees accrued to the owner, in cents.
type Lock struct {
	ID                    uint64     // locks.id
	OwnerID               *string    // locks.owner_id (nullable)
	Zone                  string     // locks.zone
	Finish                string     // locks.finish
	Status                string     // locks.status
	PriceCents            int64      // locks.price_cents
	IsPrivate             bool       // locks.is_private
	ContentText           string     // locks.content_text
	MediaType             *string    // locks.media_type (nullable)
	MediaURL              *string    // locks.media_url (nullable)
	GoldenAssetPriceCents *int64     // locks.golden_asset_price_cents (nullable)
	BoostTier             *string    // locks.boost_tier (nullable)
	BoostUntil            *time.Time // locks.boost_until (nullable)
	PendingUntil          *time.Time // locks.pending_until (nullable)
	ViewCount             uint64     // locks.view_count
	MediaEarningsCents    int64      // locks.media_earnings_cents
	CreatedAt             time.Time  // locks.created_at
	UpdatedAt             time.Time  // locks.updated_at
}

// ForResale reports whether the lock is listed on the marketplace.  A
// positive resale price makes a lock purchasable even though it already
// has an owner.
func (l *Lock) ForResale() bool {
	return l.GoldenAssetPriceCents != nil && *l.GoldenAssetPriceCents > 0
}
