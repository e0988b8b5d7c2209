package risk

import (
	"github.com/pkg/errors"
)

// ErrConfig marks a money management setup that must not be used for sizing.
var ErrConfig = errors.New("money management wasn't properly initialized")

// Parameter bounds.
const (
	MaxRiskedMoney    = 1_000_000.0
	MaxRiskMultiplier = 1_000_000.0
	MinStreak         = 1
	MaxStreakLimit    = 100
	MaxLotsLimit      = 1_000_000_000.0
	MaxSizeDecimals   = 6
)

// Params configures the martingale sizing method. They are fixed for the
// lifetime of a strategy run.
type Params struct {
	// RiskedMoney is the baseline money risked per trade.
	RiskedMoney float64
	// RiskMultiplier is raised to the loss count to scale RiskedMoney.
	RiskMultiplier float64
	// MaxStreak is the longest loss streak that still escalates risk.
	MaxStreak int

	MinLots      float64
	MaxLots      float64
	SizeDecimals int
}

func DefaultParams() Params {
	return Params{
		RiskedMoney:    100,
		RiskMultiplier: 0.5,
		MaxStreak:      5,
		MinLots:        0.01,
		MaxLots:        100,
		SizeDecimals:   1,
	}
}

// Validate checks every field against its static range.
func (p Params) Validate() error {
	if p.RiskedMoney < 0 || p.RiskedMoney > MaxRiskedMoney {
		return errors.Wrapf(ErrConfig, "risked_money must be between 0 and %.0f, got %g", MaxRiskedMoney, p.RiskedMoney)
	}
	if p.RiskMultiplier < 0 || p.RiskMultiplier > MaxRiskMultiplier {
		return errors.Wrapf(ErrConfig, "risk_multiplier must be between 0 and %.0f, got %g", MaxRiskMultiplier, p.RiskMultiplier)
	}
	if p.MaxStreak < MinStreak || p.MaxStreak > MaxStreakLimit {
		return errors.Wrapf(ErrConfig, "max_streak must be between %d and %d, got %d", MinStreak, MaxStreakLimit, p.MaxStreak)
	}
	if p.MinLots < 0 || p.MinLots > MaxLotsLimit {
		return errors.Wrapf(ErrConfig, "min_lots must be between 0 and %.0f, got %g", MaxLotsLimit, p.MinLots)
	}
	if p.MaxLots < p.MinLots || p.MaxLots > MaxLotsLimit {
		return errors.Wrapf(ErrConfig, "max_lots must be between min_lots and %.0f, got %g", MaxLotsLimit, p.MaxLots)
	}
	if p.SizeDecimals < 0 || p.SizeDecimals > MaxSizeDecimals {
		return errors.Wrapf(ErrConfig, "size_decimals must be between 0 and %d, got %d", MaxSizeDecimals, p.SizeDecimals)
	}
	return nil
}
