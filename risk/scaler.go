package risk

import "math"

// EffectiveLossCount resets a streak longer than maxStreak back to zero:
// the sequence has expired and sizing returns to baseline.
func EffectiveLossCount(lossCount, maxStreak int) int {
	if lossCount > maxStreak {
		return 0
	}
	return lossCount
}

// Coefficient is multiplier^effectiveCount. Zero losses always give 1.
func Coefficient(lossCount, maxStreak int, multiplier float64) float64 {
	return math.Pow(multiplier, float64(EffectiveLossCount(lossCount, maxStreak)))
}

// ScaledRisk applies the coefficient to the baseline risk. The result is
// floored at riskedMoney, so a multiplier below 1 never reduces risk.
func ScaledRisk(riskedMoney, coefficient float64) float64 {
	scaled := riskedMoney * coefficient
	if math.IsNaN(scaled) || scaled < riskedMoney {
		return riskedMoney
	}
	return scaled
}
