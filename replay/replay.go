// Package replay runs recorded trade signals through the sizer. Every closed
// order is written back to the journal before the next signal is sized, so
// the loss streak evolves the way it would have live.
package replay

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/market"
	"github.com/rustyeddy/lotsizer/pkg/id"
	"github.com/rustyeddy/lotsizer/risk"
)

// Options controls how signals are turned into sizing requests.
type Options struct {
	// AccountCurrency converts tick values; defaults to USD.
	AccountCurrency string

	// TickSize and TickValue override the instrument registry when > 0.
	// Both are required for symbols the registry does not know. TickValue is
	// the money value of a whole price unit per lot, see market.PointValue.
	TickSize  float64
	TickValue float64

	Logger       *zap.Logger
	SizerOptions []risk.Option
}

// Step is one replayed signal.
type Step struct {
	Signal   Signal
	Decision risk.Decision
	Order    journal.OrderRecord
}

type Result struct {
	Steps   []Step
	Summary Summary
}

// Runner owns one sizer per strategy and a quote cache shared by all of them.
type Runner struct {
	params  risk.Params
	journal journal.History
	quotes  *market.TickStore
	sizers  map[string]*risk.Sizer
	opts    Options
	log     *zap.Logger
}

// New validates params up front so a bad setup fails before any signal is
// read.
func New(params risk.Params, j journal.History, opts Options) (*Runner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if j == nil {
		return nil, errors.New("replay needs a journal")
	}
	if opts.AccountCurrency == "" {
		opts.AccountCurrency = "USD"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Runner{
		params:  params,
		journal: j,
		quotes:  market.NewTickStore(),
		sizers:  make(map[string]*risk.Sizer),
		opts:    opts,
		log:     log,
	}, nil
}

// Quotes exposes the quote cache the runner updates on every signal.
func (r *Runner) Quotes() *market.TickStore { return r.quotes }

// Run replays sigs in order. It stops at the first error and returns the
// steps completed so far.
func (r *Runner) Run(ctx context.Context, sigs []Signal) (Result, error) {
	var res Result
	acc := newAccumulator()

	for i, sig := range sigs {
		if err := ctx.Err(); err != nil {
			res.Summary = acc.summary()
			return res, err
		}

		st, err := r.Step(ctx, sig)
		if err != nil {
			res.Summary = acc.summary()
			return res, errors.Wrapf(err, "signal %d (%s %s)", i+1, sig.Strategy, sig.Time.Format("2006-01-02T15:04:05Z07:00"))
		}
		acc.add(st, r.params)
		res.Steps = append(res.Steps, st)
	}

	res.Summary = acc.summary()
	r.log.Info("replay finished",
		zap.Int("trades", res.Summary.Trades),
		zap.Int("losses", res.Summary.Losses),
		zap.Int("longest_run", res.Summary.LongestRun),
		zap.Float64("net_pl", res.Summary.NetPL))
	return res, nil
}

// Step sizes one signal, closes it at its exit and journals the result.
func (r *Runner) Step(ctx context.Context, sig Signal) (Step, error) {
	r.quotes.Set(sig.Tick())

	tickSize, tickValue, err := r.tickSpec(sig.Symbol)
	if err != nil {
		return Step{}, err
	}

	sizer, err := r.sizer(sig.Strategy)
	if err != nil {
		return Step{}, err
	}

	req := risk.Request{
		Symbol:    sig.Symbol,
		Side:      sig.Side,
		OpenPrice: sig.Entry,
		StopLoss:  sig.Stop,
		TickSize:  tickSize,
		TickValue: tickValue,
	}
	d, err := sizer.Decide(ctx, req)
	if err != nil {
		return Step{}, err
	}

	// A stopless order is sized before any price lookup happens.
	open := d.OpenPrice
	if open == 0 {
		if sig.Side == market.Long {
			open, err = r.quotes.CurrentAsk(sig.Symbol)
		} else {
			open, err = r.quotes.CurrentBid(sig.Symbol)
		}
		if err != nil {
			return Step{}, err
		}
	}

	ord := market.Order{
		ID:         id.NewAt(sig.Time),
		Strategy:   sig.Strategy,
		Symbol:     sig.Symbol,
		Side:       sig.Side,
		Size:       d.Lots,
		OpenPrice:  open,
		ClosePrice: sig.Exit,
		OpenTime:   sig.Time,
		CloseTime:  sig.Time,
	}
	rec := journal.OrderRecord{
		Order: ord,
		// same units as the sizer's risk per lot, so a stopped out order
		// loses exactly its planned risk
		RealizedPL: ord.PL() * tickValue * d.Lots,
		Reason:     string(d.Outcome),
	}
	if err := r.journal.RecordOrder(rec); err != nil {
		return Step{}, errors.Wrap(err, "record order")
	}

	r.log.Debug("replayed signal",
		zap.String("id", ord.ID),
		zap.String("strategy", sig.Strategy),
		zap.String("symbol", sig.Symbol),
		zap.Float64("lots", d.Lots),
		zap.Int("loss_count", d.LossCount),
		zap.Float64("realized_pl", rec.RealizedPL))

	return Step{Signal: sig, Decision: d, Order: rec}, nil
}

func (r *Runner) sizer(strategy string) (*risk.Sizer, error) {
	if s, ok := r.sizers[strategy]; ok {
		return s, nil
	}
	opts := append([]risk.Option{risk.WithLogger(r.log)}, r.opts.SizerOptions...)
	s, err := risk.NewSizer(strategy, r.params, r.quotes, r.journal, opts...)
	if err != nil {
		return nil, err
	}
	r.sizers[strategy] = s
	return s, nil
}

func (r *Runner) tickSpec(symbol string) (tickSize, tickValue float64, err error) {
	tickSize, tickValue = r.opts.TickSize, r.opts.TickValue
	if tickSize > 0 && tickValue > 0 {
		return tickSize, tickValue, nil
	}

	meta, err := market.Lookup(symbol)
	if err != nil {
		return 0, 0, errors.Wrap(err, "tick size and tick value are required for unlisted symbols")
	}
	if tickSize <= 0 {
		tickSize = meta.TickSize
	}
	if tickValue <= 0 {
		if tickValue, err = market.PointValue(symbol, r.opts.AccountCurrency, r.quotes); err != nil {
			return 0, 0, err
		}
	}
	return tickSize, tickValue, nil
}
