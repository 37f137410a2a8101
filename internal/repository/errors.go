// Package repository defines error types that are reused across
// multiple repositories. These sentinel values let higher layers such
// as services and handlers distinguish failure scenarios: for example,
// ErrSlotUnavailable indicates that a lock number cannot be reserved or
// operated on in its current state, while ErrLockNotFound signals that
// no row exists for the requested id.
package repository

import "errors"

// ErrLockNotFound is returned when no lock row exists for the
// requested id. Handlers should translate this into an HTTP 404.
var ErrLockNotFound = errors.New("lock not found")

// ErrSlotUnavailable is returned when the target lock is not eligible
// for the requested operation: reserving a number that is already
// ACTIVE or BANNED, buying a lock that is not listed for resale, and
// so on. Handlers should translate this into an HTTP 409.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrPromoNotFound is returned when a promo code does not exist or can
// no longer be redeemed.
var ErrPromoNotFound = errors.New("promo code not found")

// ErrProfileNotFound is returned when no mirror row exists for the
// requested user.
var ErrProfileNotFound = errors.New("profile not found")
