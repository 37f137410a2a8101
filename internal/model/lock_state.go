package model

import "time"

// LockState is a tagged view over the status and pending_until columns.
// The two columns are only meaningful together: pending_until must be
// set exactly when status is PENDING, and an expired PENDING row is not
// owned by anyone.  StateOf folds both columns (and the clock) into one
// value so callers never read them separately.
type LockState int

const (
	// StateFree means no row exists for the id, or the only row is a
	// PENDING one whose hold has already lapsed.
	StateFree LockState = iota
	StatePending
	StateActive
	StateBanned
	StateReserved
)

// StateOf classifies a lock row at the given instant.  A nil lock is
// Free.  A PENDING row whose pending_until has passed is also Free: the
// reaper simply has not swept it yet and it must not be treated as held.
func StateOf(l *Lock, now time.Time) LockState {
	if l == nil {
		return StateFree
	}
	switch l.Status {
	case StatusPending:
		if l.PendingUntil == nil || !l.PendingUntil.After(now) {
			return StateFree
		}
		return StatePending
	case StatusActive:
		return StateActive
	case StatusBanned:
		return StateBanned
	case StatusReserved:
		return StateReserved
	}
	return StateFree
}

func (s LockState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateActive:
		return "ACTIVE"
	case StateBanned:
		return "BANNED"
	case StateReserved:
		return "RESERVED"
	}
	return "FREE"
}
