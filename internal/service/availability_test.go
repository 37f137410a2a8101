package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontdesarts/lovelock/internal/model"
)

func TestAvailabilityCheck(t *testing.T) {
	locks := newFakeLockStore()
	svc := NewAvailabilityService(locks)
	ctx := context.Background()

	owner := "owner-1"
	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(30 * time.Minute)
	resalePrice := int64(25000)

	locks.activeLock(100, "owner-1")
	listed := locks.activeLock(101, "owner-1")
	listed.GoldenAssetPriceCents = &resalePrice
	locks.locks[102] = &model.Lock{ID: 102, OwnerID: &owner, Status: model.StatusPending, PendingUntil: &future}
	locks.locks[103] = &model.Lock{ID: 103, OwnerID: &owner, Status: model.StatusPending, PendingUntil: &past}
	banned := locks.activeLock(104, "owner-1")
	banned.Status = model.StatusBanned

	tests := []struct {
		name      string
		id        uint64
		available bool
		status    string
	}{
		{"no row", 42, true, AvailFree},
		{"golden number without row", 7, false, AvailTaken},
		{"active", 100, false, AvailTaken},
		{"marketplace listing", 101, true, AvailResale},
		{"live hold", 102, false, AvailTaken},
		{"lapsed hold", 103, true, AvailFree},
		{"banned", 104, false, AvailTaken},
		{"id zero", 0, false, AvailTaken},
		{"id past end of bridge", model.MaxLockID + 1, false, AvailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Check(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.available, got.Available)
			assert.Equal(t, tt.status, got.Status)
		})
	}

	got, err := svc.Check(ctx, 101)
	require.NoError(t, err)
	require.NotNil(t, got.PriceCents)
	assert.Equal(t, resalePrice, *got.PriceCents)
}

func TestAvailabilityGoldenWithLapsedHold(t *testing.T) {
	locks := newFakeLockStore()
	svc := NewAvailabilityService(locks)

	// A golden number whose hold lapsed reports taken, not free: a
	// lapsed hold means nobody holds it, and reserved numbers never
	// enter first-come allocation.
	owner := "owner-1"
	past := time.Now().UTC().Add(-time.Minute)
	locks.locks[777] = &model.Lock{ID: 777, OwnerID: &owner, Status: model.StatusPending, PendingUntil: &past}

	got, err := svc.Check(context.Background(), 777)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, AvailTaken, got.Status)
}
