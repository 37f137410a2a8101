package service

import (
	"context"
	"errors"
	"time"

	"github.com/pontdesarts/lovelock/internal/goldenset"
	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// Availability statuses reported to clients.
const (
	AvailFree   = "free"
	AvailResale = "resale"
	AvailTaken  = "taken"
)

// Availability is the public answer for one lock number.
type Availability struct {
	Available  bool   `json:"available"`
	Status     string `json:"status"`
	PriceCents *int64 `json:"price,omitempty"`
}

// AvailabilityService classifies lock numbers for the storefront.
type AvailabilityService struct {
	locks LockStore
}

// NewAvailabilityService wires an AvailabilityService.
func NewAvailabilityService(locks LockStore) *AvailabilityService {
	return &AvailabilityService{locks: locks}
}

// Check classifies a lock number as free, resale or taken.
//
// Golden assets are consulted here as well as at allocation time, so a
// reserved number with no persisted row reports taken instead of free;
// both surfaces share the goldenset predicate. A PENDING row whose hold
// already lapsed counts as free (the reaper just has not swept it yet),
// and a marketplace listing is available at its resale price even
// though the lock has an owner.
func (s *AvailabilityService) Check(ctx context.Context, id uint64) (Availability, error) {
	if id == 0 || id > model.MaxLockID {
		return Availability{Available: false, Status: AvailTaken}, nil
	}
	lock, err := s.locks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrLockNotFound) {
		if goldenset.Contains(id) {
			return Availability{Available: false, Status: AvailTaken}, nil
		}
		return Availability{Available: true, Status: AvailFree}, nil
	}
	if err != nil {
		return Availability{}, err
	}

	switch model.StateOf(lock, time.Now().UTC()) {
	case model.StateFree:
		if goldenset.Contains(id) {
			return Availability{Available: false, Status: AvailTaken}, nil
		}
		return Availability{Available: true, Status: AvailFree}, nil
	case model.StateActive:
		if lock.ForResale() {
			price := *lock.GoldenAssetPriceCents
			return Availability{Available: true, Status: AvailResale, PriceCents: &price}, nil
		}
	}
	return Availability{Available: false, Status: AvailTaken}, nil
}
