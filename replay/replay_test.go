package replay

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/market"
	"github.com/rustyeddy/lotsizer/risk"
)

var t0 = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

// sig builds a long TEST signal entering at 100 with a 5 point stop.
func sig(n int, exit float64) Signal {
	return Signal{
		Time:     t0.Add(time.Duration(n) * time.Hour),
		Strategy: "geo",
		Symbol:   "TEST",
		Side:     market.Long,
		Bid:      99,
		Ask:      100,
		Entry:    100,
		Stop:     95,
		Exit:     exit,
	}
}

func testParams() risk.Params {
	return risk.Params{
		RiskedMoney:    100,
		RiskMultiplier: 2,
		MaxStreak:      5,
		MinLots:        0.01,
		MaxLots:        100,
		SizeDecimals:   1,
	}
}

// one point is worth 10 per lot, so a 5 point stop risks 50 per lot
var testOpts = Options{TickSize: 1, TickValue: 10}

func TestRunEscalatesAfterLosses(t *testing.T) {
	t.Parallel()

	mem := journal.NewMemory()
	r, err := New(testParams(), mem, testOpts)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), []Signal{
		sig(0, 95),
		sig(1, 95),
		sig(2, 110),
		sig(3, 95),
	})
	require.NoError(t, err)
	require.Len(t, res.Steps, 4)

	lots := []float64{2, 4, 8, 2}
	losses := []int{0, 1, 2, 0}
	pl := []float64{-100, -200, 800, -100}
	for i, st := range res.Steps {
		assert.Equal(t, lots[i], st.Decision.Lots, "step %d", i)
		assert.Equal(t, losses[i], st.Decision.LossCount, "step %d", i)
		assert.Equal(t, pl[i], st.Order.RealizedPL, "step %d", i)
		assert.Equal(t, string(risk.OutcomeRisk), st.Order.Reason)
		assert.NotEmpty(t, st.Order.ID)
	}

	s := res.Summary
	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 3, s.Losses)
	assert.Equal(t, 0, s.Breakeven)
	assert.Equal(t, 2, s.LongestRun)
	assert.Equal(t, 8.0, s.PeakLots)
	assert.Equal(t, 400.0, s.NetPL)
	assert.Equal(t, t0, s.Start)
	assert.Equal(t, t0.Add(3*time.Hour), s.End)
	assert.Equal(t, 4, s.Outcomes[risk.OutcomeRisk])
	assert.Empty(t, s.Notes)

	assert.Len(t, mem.Records(), 4)
}

func TestRunAgainstSQLiteJournal(t *testing.T) {
	t.Parallel()

	db, err := journal.NewSQLite(filepath.Join(t.TempDir(), "replay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r, err := New(testParams(), db, testOpts)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), []Signal{sig(0, 95), sig(1, 95), sig(2, 95)})
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Steps[2].Decision.Lots)

	recs, err := db.ListOrders(context.Background(), "geo")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, res.Steps[0].Order.ID, recs[0].ID)
}

func TestStepMarketFillAndNoStop(t *testing.T) {
	t.Parallel()

	r, err := New(testParams(), journal.NewMemory(), testOpts)
	require.NoError(t, err)

	s := sig(0, 110)
	s.Entry = 0
	st, err := r.Step(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 100.0, st.Order.OpenPrice, "long fills at ask")
	assert.Equal(t, 2.0, st.Decision.Lots)

	s = sig(1, 90)
	s.Side = market.Short
	s.Entry = 0
	s.Stop = 0
	st, err = r.Step(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, risk.OutcomeNoStop, st.Decision.Outcome)
	assert.Equal(t, 0.01, st.Order.Size)
	assert.Equal(t, 99.0, st.Order.OpenPrice, "short fills at bid")
	assert.InDelta(t, 9*10*0.01, st.Order.RealizedPL, 1e-9)

	ask, err := r.Quotes().CurrentAsk("TEST")
	require.NoError(t, err)
	assert.Equal(t, 100.0, ask)
}

func TestRunNotes(t *testing.T) {
	t.Parallel()

	p := testParams()
	p.MaxLots = 5
	r, err := New(p, journal.NewMemory(), testOpts)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), []Signal{sig(0, 95), sig(1, 95), sig(2, 95)})
	require.NoError(t, err)
	assert.Equal(t, risk.OutcomeMaxClamp, res.Steps[2].Decision.Outcome)
	assert.Equal(t, 5.0, res.Summary.PeakLots)
	require.Len(t, res.Summary.Notes, 1)
	assert.Contains(t, res.Summary.Notes[0], "capped at 5 lots after 2 losses")

	p = testParams()
	p.MaxStreak = 1
	r, err = New(p, journal.NewMemory(), testOpts)
	require.NoError(t, err)

	res, err = r.Run(context.Background(), []Signal{sig(0, 95), sig(1, 95), sig(2, 95)})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Steps[2].Decision.Lots, "streak past max_streak resets to baseline")
	require.Len(t, res.Summary.Notes, 1)
	assert.Contains(t, res.Summary.Notes[0], "exceeded max_streak 1")
}

func TestRunRegistryTickValue(t *testing.T) {
	t.Parallel()

	r, err := New(testParams(), journal.NewMemory(), Options{})
	require.NoError(t, err)

	st, err := r.Step(context.Background(), Signal{
		Time:     t0,
		Strategy: "geo",
		Symbol:   "EUR_USD",
		Side:     market.Long,
		Bid:      1.0998,
		Ask:      1.1000,
		Entry:    1.1000,
		Stop:     1.0960,
		Exit:     1.0960,
	})
	require.NoError(t, err)
	// 400 ticks worth 1 USD each per lot; 100/400 truncates to 0.2
	assert.InDelta(t, 400, st.Decision.StopTicks, 1e-6)
	assert.InDelta(t, 400, st.Decision.RiskPerLot, 1e-6)
	assert.Equal(t, 0.2, st.Decision.Lots)
	assert.InDelta(t, -80, st.Order.RealizedPL, 1e-6)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	_, err := New(risk.Params{MaxStreak: 0}, journal.NewMemory(), testOpts)
	assert.True(t, errors.Is(err, risk.ErrConfig))

	_, err = New(testParams(), nil, testOpts)
	assert.Error(t, err)

	r, err := New(testParams(), journal.NewMemory(), Options{})
	require.NoError(t, err)
	res, err := r.Run(context.Background(), []Signal{sig(0, 95)})
	assert.True(t, errors.Is(err, market.ErrUnknownInstrument))
	assert.Contains(t, err.Error(), "signal 1")
	assert.Empty(t, res.Steps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err = New(testParams(), journal.NewMemory(), testOpts)
	require.NoError(t, err)
	_, err = r.Run(ctx, []Signal{sig(0, 95)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummaryToRun(t *testing.T) {
	t.Parallel()

	s := Summary{
		Start:      t0,
		End:        t0.Add(time.Hour),
		Trades:     3,
		Wins:       1,
		Losses:     2,
		LongestRun: 2,
		PeakLots:   4,
		NetPL:      -50,
		Notes:      []string{"n"},
	}
	run := s.ToRun("geo", "TEST", "signals.csv", testParams())

	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, "geo", run.Strategy)
	assert.Equal(t, "signals.csv", run.Dataset)
	assert.Equal(t, 2.0, run.RiskMultiplier)
	assert.Equal(t, 5, run.MaxStreak)
	assert.Equal(t, 3, run.Trades)
	assert.Equal(t, -50.0, run.NetPL)
	assert.Equal(t, []string{"n"}, run.Notes)
}
