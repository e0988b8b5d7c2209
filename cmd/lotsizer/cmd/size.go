package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/market"
	"github.com/rustyeddy/lotsizer/report"
	"github.com/rustyeddy/lotsizer/risk"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size one order against the journal",
	Long: `Compute the lot size for one order. The strategy's loss streak is read
from the configured journal.

An open price of 0 uses the current quote (--bid/--ask): ask for longs,
bid for shorts. Without --stop the minimum lot size is returned.

Tick size and tick value default to the instrument registry; tick value
is the account currency value of a whole price unit per lot.

Examples:
  lotsizer size --symbol EUR_USD --side long --open 1.1000 --stop 1.0950
  lotsizer size -s geo --symbol XAU_USD --side short --bid 2010 --ask 2010.3 --stop 2020
  lotsizer size --symbol TEST --open 100 --stop 95 --tick-size 1 --tick-value 10`,
	Args: cobra.NoArgs,
	RunE: runSize,
}

var (
	sizeSide       string
	sizeOpen       float64
	sizeStop       float64
	sizeTakeProfit float64
	sizeBid        float64
	sizeAsk        float64
	sizeTickSize   float64
	sizeTickValue  float64
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().StringVar(&sizeSide, "side", "long", "order side: long or short")
	sizeCmd.Flags().Float64Var(&sizeOpen, "open", 0, "open price (0 = current quote)")
	sizeCmd.Flags().Float64Var(&sizeStop, "stop", 0, "stop loss price (0 = no stop)")
	sizeCmd.Flags().Float64Var(&sizeTakeProfit, "take-profit", 0, "take profit price, reported as reward/risk")
	sizeCmd.Flags().Float64Var(&sizeBid, "bid", 0, "current bid")
	sizeCmd.Flags().Float64Var(&sizeAsk, "ask", 0, "current ask")
	sizeCmd.Flags().Float64Var(&sizeTickSize, "tick-size", 0, "tick size (0 = instrument registry)")
	sizeCmd.Flags().Float64Var(&sizeTickValue, "tick-value", 0, "value of a whole price unit per lot (0 = instrument registry)")
}

func runSize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	side, err := market.ParseSide(sizeSide)
	if err != nil {
		return err
	}

	sym := cfg.Strategy.Symbol
	quotes := market.NewTickStore()
	if sizeBid > 0 || sizeAsk > 0 {
		bid, ask := sizeBid, sizeAsk
		if bid == 0 {
			bid = ask
		}
		if ask == 0 {
			ask = bid
		}
		quotes.Set(market.Tick{Symbol: sym, Time: time.Now().UTC(), Bid: bid, Ask: ask})
	}

	tickSize, tickValue, err := tickSpec(sym, cfg.Account.Currency, quotes, sizeTickSize, sizeTickValue)
	if err != nil {
		return err
	}

	h, err := journal.Open(cfg.Journal.Type, cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer h.Close()

	params := cfg.Params()
	sizer, err := risk.NewSizer(cfg.Strategy.Name, params, quotes, h, risk.WithLogger(log))
	if err != nil {
		return err
	}

	req := risk.Request{
		Symbol:    sym,
		Side:      side,
		OpenPrice: sizeOpen,
		StopLoss:  sizeStop,
		TickSize:  tickSize,
		TickValue: tickValue,
	}
	d, err := sizer.Decide(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}

	rr := 0.0
	if sizeTakeProfit > 0 && sizeStop > 0 && d.OpenPrice > 0 {
		rr = risk.RR(d.OpenPrice, sizeStop, sizeTakeProfit)
	}
	report.Decision(cmd.OutOrStdout(), cfg.Strategy.Name, params, req, d, rr)
	return nil
}

// tickSpec fills whatever the flags left at 0 from the instrument registry.
func tickSpec(sym, currency string, quotes market.MarketDataSource, tickSize, tickValue float64) (float64, float64, error) {
	if tickSize > 0 && tickValue > 0 {
		return tickSize, tickValue, nil
	}

	meta, err := market.Lookup(sym)
	if err != nil {
		return 0, 0, fmt.Errorf("%w (pass --tick-size and --tick-value)", err)
	}
	if tickSize <= 0 {
		tickSize = meta.TickSize
	}
	if tickValue <= 0 {
		if tickValue, err = market.PointValue(sym, currency, quotes); err != nil {
			return 0, 0, fmt.Errorf("tick value: %w", err)
		}
	}
	return tickSize, tickValue, nil
}
