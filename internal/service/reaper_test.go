package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/repository"
)

func TestReaperSweep(t *testing.T) {
	locks := newFakeLockStore()
	owner := "user-1"
	past := time.Now().UTC().Add(-time.Minute)
	for _, id := range []uint64{10, 11} {
		locks.locks[id] = &model.Lock{ID: id, OwnerID: &owner,
			Status: model.StatusPending, PendingUntil: &past}
	}
	locks.reapIDs = []uint64{10, 11}

	res, err := NewReaper(locks).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []uint64{10, 11}, res.IDs)

	// Swept numbers come back to the storefront as free.
	_, err = locks.GetByID(context.Background(), 10)
	assert.ErrorIs(t, err, repository.ErrLockNotFound)
}

func TestReaperSweepEmpty(t *testing.T) {
	res, err := NewReaper(newFakeLockStore()).Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Count)
}

func TestReaperSweepError(t *testing.T) {
	locks := newFakeLockStore()
	locks.reapErr = errors.New("mysql gone away")
	_, err := NewReaper(locks).Sweep(context.Background())
	assert.Error(t, err)
}

func TestReaperRunStopsOnCancel(t *testing.T) {
	locks := newFakeLockStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewReaper(locks).Run(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper loop did not stop after cancellation")
	}
}
