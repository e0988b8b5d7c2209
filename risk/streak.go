package risk

import "github.com/rustyeddy/lotsizer/market"

// CountRecentLosses walks orders from the newest (last) entry backwards and
// counts consecutive losing orders of strategy on symbol. Orders of other
// strategies or symbols and balance orders (open == close) are skipped. A
// breakeven P/L counts as a loss. The first profitable order stops the scan.
//
// The count is not capped; see EffectiveLossCount.
func CountRecentLosses(orders []market.Order, strategy, symbol string) int {
	count := 0
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		if o.Strategy != strategy || o.Symbol != symbol {
			continue
		}
		if o.IsBalance() {
			continue
		}
		if o.PL() > 0 {
			return count
		}
		count++
	}
	return count
}
