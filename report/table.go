// Package report renders sizing decisions, replays and journals as console
// tables and Excel workbooks.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/replay"
	"github.com/rustyeddy/lotsizer/risk"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// Decision prints one sizing decision. rr is the reward to risk ratio of the
// bracket, 0 when there is no take profit.
func Decision(w io.Writer, strategy string, p risk.Params, req risk.Request, d risk.Decision, rr float64) {
	t := newTable(w, "SIZING DECISION")

	t.AppendRows([]table.Row{
		{"Strategy", strategy},
		{"Symbol", req.Symbol},
		{"Side", req.Side},
		{"Open", fmt.Sprintf("%g", d.OpenPrice)},
		{"Stop", fmt.Sprintf("%g", req.StopLoss)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Stop Ticks", fmt.Sprintf("%.1f", d.StopTicks)},
		{"Risk / Lot", fmt.Sprintf("%.2f", d.RiskPerLot)},
		{"Loss Streak", fmt.Sprintf("%d (effective %d, max %d)", d.LossCount, d.EffectiveCount, p.MaxStreak)},
		{"Coefficient", fmt.Sprintf("%g", d.Coefficient)},
		{"Scaled Risk", fmt.Sprintf("%.2f", d.ScaledRisk)},
	})
	if rr > 0 {
		t.AppendRow(table.Row{"Reward / Risk", fmt.Sprintf("%.2f", rr)})
	}
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Lots", fmt.Sprintf("%g", d.Lots)},
		{"Planned Risk", fmt.Sprintf("%.2f", d.PlannedRisk())},
		{"Outcome", string(d.Outcome)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 14, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, Align: text.AlignRight},
	})
	t.Render()
}

// Steps prints one row per replayed signal.
func Steps(w io.Writer, steps []replay.Step) {
	t := newTable(w, "REPLAY")
	t.AppendHeader(table.Row{"#", "Time", "Strategy", "Symbol", "Side", "Open", "Stop", "Exit", "Spread", "Streak", "Coef", "Lots", "P/L", "Outcome"})

	for i, st := range steps {
		t.AppendRow(table.Row{
			i + 1,
			st.Signal.Time.UTC().Format(time.DateTime),
			st.Signal.Strategy,
			st.Signal.Symbol,
			st.Signal.Side,
			st.Order.OpenPrice,
			st.Signal.Stop,
			st.Order.ClosePrice,
			fmt.Sprintf("%.5f", st.Signal.Tick().Spread()),
			st.Decision.LossCount,
			st.Decision.Coefficient,
			st.Decision.Lots,
			fmt.Sprintf("%.2f", st.Order.RealizedPL),
			st.Decision.Outcome,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "P/L", Align: text.AlignRight},
		{Name: "Lots", Align: text.AlignRight},
		{Name: "Spread", Align: text.AlignRight},
	})
	t.Render()
}

// Summary prints the aggregate of a replay.
func Summary(w io.Writer, s replay.Summary) {
	t := newTable(w, "SUMMARY")

	winRate := 0.0
	if decided := s.Wins + s.Losses; decided > 0 {
		winRate = float64(s.Wins) / float64(decided) * 100
	}

	t.AppendRows([]table.Row{
		{"Trades", s.Trades},
		{"Wins / Losses / Even", fmt.Sprintf("%d / %d / %d", s.Wins, s.Losses, s.Breakeven)},
		{"Win Rate", fmt.Sprintf("%.2f%%", winRate)},
		{"Longest Loss Streak", s.LongestRun},
		{"Peak Lots", s.PeakLots},
		{"Net P/L", fmt.Sprintf("%.2f", s.NetPL)},
	})
	if len(s.Notes) > 0 {
		t.AppendSeparator()
		for _, n := range s.Notes {
			t.AppendRow(table.Row{"Note", n})
		}
	}
	t.Render()
}

// Orders prints journal records.
func Orders(w io.Writer, recs []journal.OrderRecord) {
	t := newTable(w, "ORDERS")
	t.AppendHeader(table.Row{"ID", "Strategy", "Symbol", "Side", "Size", "Open", "Close", "Closed At", "P/L", "Reason"})

	total := 0.0
	for _, r := range recs {
		total += r.RealizedPL
		t.AppendRow(table.Row{
			r.ID,
			r.Strategy,
			r.Symbol,
			r.Side,
			r.Size,
			r.OpenPrice,
			r.ClosePrice,
			r.CloseTime.UTC().Format(time.DateTime),
			fmt.Sprintf("%.2f", r.RealizedPL),
			r.Reason,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "Total", fmt.Sprintf("%.2f", total), ""})
	t.Render()
}
