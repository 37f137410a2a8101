package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	soon := now.Add(30 * time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		lock *Lock
		want LockState
	}{
		{name: "no row", lock: nil, want: StateFree},
		{name: "live hold", lock: &Lock{Status: StatusPending, PendingUntil: &soon}, want: StatePending},
		{name: "lapsed hold", lock: &Lock{Status: StatusPending, PendingUntil: &past}, want: StateFree},
		{name: "hold expiring this instant", lock: &Lock{Status: StatusPending, PendingUntil: &now}, want: StateFree},
		{name: "pending without expiry", lock: &Lock{Status: StatusPending}, want: StateFree},
		{name: "active", lock: &Lock{Status: StatusActive}, want: StateActive},
		{name: "banned", lock: &Lock{Status: StatusBanned}, want: StateBanned},
		{name: "reserved", lock: &Lock{Status: StatusReserved}, want: StateReserved},
		{name: "unknown status", lock: &Lock{Status: "GARBAGE"}, want: StateFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(tt.lock, now))
		})
	}
}

func TestForResale(t *testing.T) {
	price := int64(5000)
	zero := int64(0)

	assert.False(t, (&Lock{}).ForResale())
	assert.False(t, (&Lock{GoldenAssetPriceCents: &zero}).ForResale())
	assert.True(t, (&Lock{GoldenAssetPriceCents: &price}).ForResale())
}
