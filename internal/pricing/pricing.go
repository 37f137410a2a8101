// Package pricing holds the static price tables and the pure
// calculations used by checkout and reconciliation.  All amounts are
// integer cents.  The tables are fixed at process start; there is no
// runtime mutation.
package pricing

import (
	"errors"
	"math"
	"time"

	"github.com/pontdesarts/lovelock/internal/model"
)

// ErrInvalidConfiguration is returned when a quote is requested with an
// enum value outside the published tables.  Unknown values never fall
// back to a default price.
var ErrInvalidConfiguration = errors.New("invalid lock configuration")

// Base price per bridge zone, in cents.
var zonePriceCents = map[string]int64{
	model.ZoneStandard: 2999,
	model.ZonePremium:  4999,
	model.ZoneSky:      9999,
}

// Price per metal finish, in cents.  Bronze is included in the zone
// price.
var finishPriceCents = map[string]int64{
	model.FinishBronze:  0,
	model.FinishSilver:  999,
	model.FinishGold:    1999,
	model.FinishDiamond: 4999,
}

// Price per attached media kind, in cents.  The empty string means no
// media add-on.
var mediaPriceCents = map[string]int64{
	"":               0,
	model.MediaPhoto: 499,
	model.MediaAudio: 999,
	model.MediaVideo: 1999,
}

// Boost tier prices in cents and visibility windows.
var boostPriceCents = map[string]int64{
	model.BoostSpark:   499,
	model.BoostFlame:   899,
	model.BoostEternal: 1599,
}

var boostDuration = map[string]time.Duration{
	model.BoostSpark:   7 * 24 * time.Hour,
	model.BoostFlame:   14 * 24 * time.Hour,
	model.BoostEternal: 30 * 24 * time.Hour,
}

const (
	// CustomNumberFeeCents is charged when the buyer picks a specific
	// lock number instead of taking the next free one.
	CustomNumberFeeCents int64 = 999

	// MediaUnlockFeeCents is the fixed fee a visitor pays to view a
	// private lock's media.  It accrues to the lock owner's earnings.
	MediaUnlockFeeCents int64 = 199

	// resaleCommissionRate is the platform's cut of a marketplace sale.
	resaleCommissionRate = 0.20
)

// Quote computes the total price of a lock configuration: zone base +
// finish + media add-on + optional custom-number fee.  The privacy flag
// completes the configuration but is free: it never changes the total.
// Unknown enum values return ErrInvalidConfiguration.
func Quote(zone, finish, mediaType string, customNumber, isPrivate bool) (int64, error) {
	z, ok := zonePriceCents[zone]
	if !ok {
		return 0, ErrInvalidConfiguration
	}
	f, ok := finishPriceCents[finish]
	if !ok {
		return 0, ErrInvalidConfiguration
	}
	m, ok := mediaPriceCents[mediaType]
	if !ok {
		return 0, ErrInvalidConfiguration
	}
	total := z + f + m
	if customNumber {
		total += CustomNumberFeeCents
	}
	return total, nil
}

// ResaleSplit divides a marketplace sale between the platform and the
// seller.  Both parts are rounded to whole cents independently, so at
// certain prices commission+profit drifts from the input by one cent.
// That tolerance is deliberate; callers must not reconcile the halves
// against each other.
func ResaleSplit(priceCents int64) (commissionCents, sellerCents int64) {
	commissionCents = int64(math.Round(float64(priceCents) * resaleCommissionRate))
	sellerCents = int64(math.Round(float64(priceCents) * (1 - resaleCommissionRate)))
	return commissionCents, sellerCents
}

// BoostPrice returns the charge for a boost tier, or
// ErrInvalidConfiguration for an unknown tier.
func BoostPrice(tier string) (int64, error) {
	p, ok := boostPriceCents[tier]
	if !ok {
		return 0, ErrInvalidConfiguration
	}
	return p, nil
}

// BoostDuration returns the visibility window for a boost tier.
func BoostDuration(tier string) (time.Duration, error) {
	d, ok := boostDuration[tier]
	if !ok {
		return 0, ErrInvalidConfiguration
	}
	return d, nil
}

// MediaPrice returns the add-on price for upgrading a lock to carry the
// given media kind.  The empty string is rejected here: an upgrade must
// name a concrete kind.
func MediaPrice(mediaType string) (int64, error) {
	if mediaType == "" {
		return 0, ErrInvalidConfiguration
	}
	p, ok := mediaPriceCents[mediaType]
	if !ok {
		return 0, ErrInvalidConfiguration
	}
	return p, nil
}

// ApplyPercentOff discounts an amount by a whole percentage, rounding
// to the nearest cent.
func ApplyPercentOff(amountCents int64, percentOff int) int64 {
	if percentOff <= 0 {
		return amountCents
	}
	if percentOff >= 100 {
		return 0
	}
	return int64(math.Round(float64(amountCents) * float64(100-percentOff) / 100))
}
