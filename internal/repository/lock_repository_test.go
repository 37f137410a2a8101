package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpiredDeleteQuery(t *testing.T) {
	query, args := expiredDeleteQuery([]uint64{10})
	assert.Equal(t,
		`DELETE FROM locks WHERE id IN (?) AND status = 'PENDING' AND pending_until <= UTC_TIMESTAMP()`,
		query)
	assert.Equal(t, []any{uint64(10)}, args)

	// The DELETE is scoped to the ids the sweep selected and repeats
	// the expiry predicate, so a hold that lapses or is refreshed
	// after selection cannot be removed or miscounted.
	query, args = expiredDeleteQuery([]uint64{10, 11, 12})
	assert.Equal(t,
		`DELETE FROM locks WHERE id IN (?, ?, ?) AND status = 'PENDING' AND pending_until <= UTC_TIMESTAMP()`,
		query)
	assert.Equal(t, []any{uint64(10), uint64(11), uint64(12)}, args)
}
