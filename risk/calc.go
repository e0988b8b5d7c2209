package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

// riskEpsilon is the smallest risk per lot treated as a real stop distance.
const riskEpsilon = 1e-12

// finite reports whether every value can be carried as a decimal.
func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// distance is |open-stop| computed on the shortest decimal form of each price,
// so 1.1000 and 1.0950 are exactly 0.005 apart.
func distance(open, stop float64) decimal.Decimal {
	return decimal.NewFromFloat(open).Sub(decimal.NewFromFloat(stop)).Abs()
}

// StopTicks is the entry to stop distance in ticks.
func StopTicks(open, stop, tickSize float64) float64 {
	if tickSize <= 0 {
		return 0
	}
	if !finite(open, stop, tickSize) {
		return math.Abs(open-stop) / tickSize
	}
	return distance(open, stop).Div(decimal.NewFromFloat(tickSize)).InexactFloat64()
}

// RiskPerLot is the money lost by one lot if the stop is hit.
// tickValue is the money value of a one unit price move for one lot.
func RiskPerLot(open, stop, tickSize, tickValue float64) float64 {
	if tickSize <= 0 {
		return 0
	}
	if !finite(open, stop, tickSize, tickValue) {
		return StopTicks(open, stop, tickSize) * tickSize * tickValue
	}
	return riskPerLot(open, stop, tickValue).InexactFloat64()
}

func riskPerLot(open, stop, tickValue float64) decimal.Decimal {
	return distance(open, stop).Mul(decimal.NewFromFloat(tickValue))
}

// SizeForRisk is scaledRisk divided by the risk per lot, truncated to decimals.
// The quotient is taken in decimal so a stop that is an exact number of ticks
// never loses a lot step to float error. An infinite scaledRisk stays infinite.
func SizeForRisk(scaledRisk, open, stop, tickSize, tickValue float64, decimals int) float64 {
	if !finite(scaledRisk, open, stop, tickSize, tickValue) || tickSize <= 0 {
		return RoundDown(scaledRisk/RiskPerLot(open, stop, tickSize, tickValue), decimals)
	}
	perLot := riskPerLot(open, stop, tickValue)
	if perLot.Sign() <= 0 {
		return RoundDown(scaledRisk/perLot.InexactFloat64(), decimals)
	}
	q, _ := decimal.NewFromFloat(scaledRisk).QuoRem(perLot, int32(decimals))
	return q.InexactFloat64()
}

// RoundDown truncates x toward zero at the given number of decimal places.
// Infinities are returned unchanged.
func RoundDown(x float64, decimals int) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	return decimal.NewFromFloat(x).Truncate(int32(decimals)).InexactFloat64()
}

// RR is the reward to risk ratio of a bracket order.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}
