package risk

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rustyeddy/lotsizer/internal/metrics"
	"github.com/rustyeddy/lotsizer/market"
)

// Outcome tells which branch produced a sizing decision.
type Outcome string

const (
	OutcomeRisk       Outcome = "risk"
	OutcomeNoStop     Outcome = "no_stop"
	OutcomeDegenerate Outcome = "degenerate"
	OutcomeMinClamp   Outcome = "min_clamp"
	OutcomeMaxClamp   Outcome = "max_clamp"
)

// Request describes the order being sized. It is built fresh for every
// decision.
type Request struct {
	Symbol string
	Side   market.Side
	// OpenPrice of 0 means the current ask (long) or bid (short).
	OpenPrice float64
	// StopLoss of 0 means no stop.
	StopLoss  float64
	TickSize  float64
	TickValue float64
}

// Decision is the trade size plus the intermediate values that produced it.
type Decision struct {
	Lots           float64
	OpenPrice      float64
	StopTicks      float64
	RiskPerLot     float64
	LossCount      int
	EffectiveCount int
	Coefficient    float64
	ScaledRisk     float64
	Outcome        Outcome
}

// PlannedRisk is the money lost by Lots if the stop is hit.
func (d Decision) PlannedRisk() float64 {
	return d.Lots * d.RiskPerLot
}

type Option func(*Sizer)

func WithLogger(log *zap.Logger) Option {
	return func(s *Sizer) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics publishes every decision to the prometheus registry.
func WithMetrics() Option {
	return func(s *Sizer) {
		s.metrics = true
	}
}

// Sizer sizes the orders of one strategy. It holds no mutable state and is
// safe to call from several goroutines as long as its sources are.
type Sizer struct {
	strategy string
	params   Params
	quotes   market.MarketDataSource
	history  market.TradeHistorySource
	log      *zap.Logger
	metrics  bool
}

// NewSizer validates params and binds the sizer to its collaborators.
// quotes may be nil when every request carries an explicit open price.
func NewSizer(strategy string, params Params, quotes market.MarketDataSource, history market.TradeHistorySource, opts ...Option) (*Sizer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return newSizer(strategy, params, quotes, history, opts...), nil
}

func newSizer(strategy string, params Params, quotes market.MarketDataSource, history market.TradeHistorySource, opts ...Option) *Sizer {
	if history == nil {
		history = market.History(nil)
	}

	s := &Sizer{
		strategy: strategy,
		params:   params,
		quotes:   quotes,
		history:  history,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeTradeSize sizes one order without building a long lived Sizer.
// Params are trusted apart from the risked money check.
func ComputeTradeSize(ctx context.Context, strategy string, params Params, req Request, quotes market.MarketDataSource, history market.TradeHistorySource, opts ...Option) (float64, error) {
	return newSizer(strategy, params, quotes, history, opts...).ComputeTradeSize(ctx, req)
}

func (s *Sizer) Strategy() string { return s.strategy }
func (s *Sizer) Params() Params   { return s.params }

// ComputeTradeSize returns the number of lots to trade for req.
func (s *Sizer) ComputeTradeSize(ctx context.Context, req Request) (float64, error) {
	d, err := s.Decide(ctx, req)
	if err != nil {
		return 0, err
	}
	return d.Lots, nil
}

// Decide runs the full sizing pipeline: resolve the open price, measure the
// stop in money per lot, scale the baseline risk by the loss streak, then
// truncate and clamp.
func (s *Sizer) Decide(ctx context.Context, req Request) (Decision, error) {
	p := s.params
	if p.RiskedMoney < 0 {
		if s.metrics {
			metrics.RecordConfigError(s.strategy)
		}
		return Decision{}, errors.Wrapf(ErrConfig, "risked_money %g", p.RiskedMoney)
	}

	d := Decision{OpenPrice: req.OpenPrice}

	// Without a stop there is nothing to size against.
	if req.StopLoss == 0 {
		d.Lots = p.MinLots
		d.Outcome = OutcomeNoStop
		s.done(req, d)
		return d, nil
	}

	open, err := s.openPrice(req)
	if err != nil {
		return Decision{}, err
	}
	d.OpenPrice = open
	d.StopTicks = StopTicks(open, req.StopLoss, req.TickSize)
	d.RiskPerLot = RiskPerLot(open, req.StopLoss, req.TickSize, req.TickValue)

	// Catches NaN as well as zero and negative values.
	if !(d.RiskPerLot > riskEpsilon) {
		d.Lots = p.MinLots
		d.Outcome = OutcomeDegenerate
		s.done(req, d)
		return d, nil
	}

	orders, err := s.history.OrdersForStrategy(ctx, s.strategy)
	if err != nil {
		return Decision{}, errors.Wrapf(err, "load history for %s", s.strategy)
	}

	d.LossCount = CountRecentLosses(orders, s.strategy, req.Symbol)
	d.EffectiveCount = EffectiveLossCount(d.LossCount, p.MaxStreak)
	d.Coefficient = Coefficient(d.LossCount, p.MaxStreak, p.RiskMultiplier)
	d.ScaledRisk = ScaledRisk(p.RiskedMoney, d.Coefficient)

	lots := SizeForRisk(d.ScaledRisk, open, req.StopLoss, req.TickSize, req.TickValue, p.SizeDecimals)
	d.Outcome = OutcomeRisk
	switch {
	case lots < p.MinLots:
		lots = p.MinLots
		d.Outcome = OutcomeMinClamp
	case lots > p.MaxLots:
		lots = p.MaxLots
		d.Outcome = OutcomeMaxClamp
	}
	d.Lots = lots

	s.done(req, d)
	return d, nil
}

func (s *Sizer) openPrice(req Request) (float64, error) {
	if req.OpenPrice != 0 {
		return req.OpenPrice, nil
	}
	if s.quotes == nil {
		return 0, errors.Wrapf(market.ErrNoPrice, "no market data source for %s", req.Symbol)
	}

	var (
		px  float64
		err error
	)
	if req.Side == market.Long {
		px, err = s.quotes.CurrentAsk(req.Symbol)
	} else {
		px, err = s.quotes.CurrentBid(req.Symbol)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "open price for %s %s", req.Side, req.Symbol)
	}
	return px, nil
}

func (s *Sizer) done(req Request, d Decision) {
	fields := []zap.Field{
		zap.String("strategy", s.strategy),
		zap.String("symbol", req.Symbol),
		zap.Stringer("side", req.Side),
		zap.String("outcome", string(d.Outcome)),
		zap.Float64("lots", d.Lots),
	}

	switch d.Outcome {
	case OutcomeNoStop, OutcomeDegenerate:
		s.log.Info("sizing fell back to min lots", append(fields,
			zap.Float64("open", d.OpenPrice),
			zap.Float64("stop", req.StopLoss),
			zap.Float64("risk_per_lot", d.RiskPerLot))...)
	default:
		s.log.Debug("sized order", append(fields,
			zap.Int("loss_count", d.LossCount),
			zap.Int("effective_count", d.EffectiveCount),
			zap.Float64("coefficient", d.Coefficient),
			zap.Float64("scaled_risk", d.ScaledRisk),
			zap.Float64("risk_per_lot", d.RiskPerLot))...)
	}

	if s.metrics {
		metrics.RecordDecision(s.strategy, req.Symbol, string(d.Outcome), d.Lots, d.LossCount)
	}
}
