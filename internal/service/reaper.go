package service

import (
	"context"
	"log"
	"time"
)

// SweepResult reports one reaper pass.
type SweepResult struct {
	Count int      `json:"count"`
	IDs   []uint64 `json:"ids"`
}

// Reaper deletes PENDING locks whose hold has lapsed. It is the safety
// net for checkout sessions that were opened but never paid or
// expired-webhooked. Sweeps are safe to run concurrently with each
// other and with the reconciler: the deletion predicate lives in SQL
// and excludes anything already activated.
type Reaper struct {
	locks LockStore
}

// NewReaper wires a Reaper.
func NewReaper(locks LockStore) *Reaper { return &Reaper{locks: locks} }

// Sweep removes all expired pending reservations in one batch and
// returns the count and ids removed.
func (r *Reaper) Sweep(ctx context.Context) (SweepResult, error) {
	ids, err := r.locks.ReapExpired(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	if len(ids) > 0 {
		log.Printf("reaper: removed %d expired pending locks %v", len(ids), ids)
	}
	return SweepResult{Count: len(ids), IDs: ids}, nil
}

// Run sweeps on a fixed interval until the context is cancelled. Errors
// are logged and the loop continues; a transient database failure must
// not stop the safety net.
func (r *Reaper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				log.Printf("reaper: sweep failed: %v", err)
			}
		}
	}
}
