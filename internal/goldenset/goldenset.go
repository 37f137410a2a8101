// Package goldenset holds the static set of reserved lock numbers
// ("golden assets") excluded from ordinary first-come allocation.
// These ids are sold separately, usually through marketplace listings.
// The set is built once at process start and never mutated.
package goldenset

import (
	"os"
	"strconv"
	"strings"
)

// Numbers people actually fight over: single digits, repdigits, round
// millions and the obvious romance numbers.  Extend with GOLDEN_IDS
// (comma separated) without recompiling.
var defaultIDs = []uint64{
	1, 2, 3, 4, 5, 6, 7, 8, 9,
	11, 22, 33, 44, 55, 66, 77, 88, 99,
	100, 111, 222, 333, 444, 555, 666, 777, 888, 999,
	1000, 1111, 2222, 3333, 4444, 5555, 6666, 7777, 8888, 9999,
	10000, 12345, 54321, 69420, 80085,
	100000, 111111, 123456, 222222, 333333, 444444,
	500000, 555555, 654321, 666666, 777777, 888888, 999999,
	1000000,
	143, 1430, 14344, // "I love you" pager codes
	214, 520, 1314,   // Feb 14, and the Mandarin homophones
}

var set map[uint64]struct{}

func init() {
	set = make(map[uint64]struct{}, len(defaultIDs))
	for _, id := range defaultIDs {
		set[id] = struct{}{}
	}
	for _, part := range strings.Split(os.Getenv("GOLDEN_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseUint(part, 10, 64); err == nil && id > 0 {
			set[id] = struct{}{}
		}
	}
}

// Contains reports whether the lock number is a reserved golden asset.
func Contains(id uint64) bool {
	_, ok := set[id]
	return ok
}

// Size returns the number of reserved ids, mostly for diagnostics.
func Size() int { return len(set) }
