// Package whatif holds post-hoc filters over a closed-order journal. Each
// filter answers "what if these orders had not been taken" and returns a new
// slice, leaving its input untouched.
package whatif

import (
	"math"

	"github.com/rustyeddy/lotsizer/journal"
)

const (
	DefaultMaxLots    = 0.01
	DefaultMaxRisk    = 100.0
	DefaultStreakStep = 3
)

// Filter is any of the order filters below with its argument bound.
type Filter func([]journal.OrderRecord) []journal.OrderRecord

// RemoveMinLots drops orders whose size is at or below maxLots.
func RemoveMinLots(orders []journal.OrderRecord, maxLots float64) []journal.OrderRecord {
	return keep(orders, func(_ int, r journal.OrderRecord) bool {
		return r.Size > maxLots
	})
}

// RemoveMinRisks drops orders whose price distance times size is at or below
// maxRisk.
func RemoveMinRisks(orders []journal.OrderRecord, maxRisk float64) []journal.OrderRecord {
	return keep(orders, func(_ int, r journal.OrderRecord) bool {
		return r.Risk() > maxRisk
	})
}

// KeepStreakLevel keeps orders sitting at position limit or deeper inside a
// run of same-signed realized P/L. Position 0 is the first order of a run, so
// limit 0 keeps everything.
func KeepStreakLevel(orders []journal.OrderRecord, limit int) []journal.OrderRecord {
	levels := StreakLevels(orders)
	return keep(orders, func(i int, _ journal.OrderRecord) bool {
		return levels[i] >= limit
	})
}

// StreakLevels returns, for each order, its 0-based position within the run
// of consecutive orders that share the sign of RealizedPL.
func StreakLevels(orders []journal.OrderRecord) []int {
	levels := make([]int, len(orders))
	for i := range orders {
		if i > 0 && sameSign(orders[i].RealizedPL, orders[i-1].RealizedPL) {
			levels[i] = levels[i-1] + 1
		}
	}
	return levels
}

func MinLots(maxLots float64) Filter {
	return func(o []journal.OrderRecord) []journal.OrderRecord { return RemoveMinLots(o, maxLots) }
}

func MinRisks(maxRisk float64) Filter {
	return func(o []journal.OrderRecord) []journal.OrderRecord { return RemoveMinRisks(o, maxRisk) }
}

func StreakLevel(limit int) Filter {
	return func(o []journal.OrderRecord) []journal.OrderRecord { return KeepStreakLevel(o, limit) }
}

// Apply runs filters in order.
func Apply(orders []journal.OrderRecord, filters ...Filter) []journal.OrderRecord {
	out := append([]journal.OrderRecord(nil), orders...)
	for _, f := range filters {
		out = f(out)
	}
	return out
}

func keep(orders []journal.OrderRecord, ok func(int, journal.OrderRecord) bool) []journal.OrderRecord {
	out := make([]journal.OrderRecord, 0, len(orders))
	for i, r := range orders {
		if ok(i, r) {
			out = append(out, r)
		}
	}
	return out
}

// sameSign is false when either value is NaN, so an unknown P/L always
// starts its own run.
func sameSign(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return sign(a) == sign(b)
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
