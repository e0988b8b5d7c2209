package replay

import (
	"fmt"
	"time"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/pkg/id"
	"github.com/rustyeddy/lotsizer/risk"
)

// Summary aggregates a replay.
type Summary struct {
	Start time.Time
	End   time.Time

	Trades    int
	Wins      int
	Losses    int
	Breakeven int
	// LongestRun is the longest run of consecutive losses for any
	// strategy/symbol pair. Breakeven orders neither extend nor break it.
	LongestRun int
	PeakLots   float64
	NetPL      float64

	Outcomes map[risk.Outcome]int
	Notes    []string
}

type accumulator struct {
	s    Summary
	runs map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		s:    Summary{Outcomes: make(map[risk.Outcome]int)},
		runs: make(map[string]int),
	}
}

func (a *accumulator) add(st Step, p risk.Params) {
	s := &a.s
	t := st.Signal.Time
	if s.Trades == 0 || t.Before(s.Start) {
		s.Start = t
	}
	if t.After(s.End) {
		s.End = t
	}

	s.Trades++
	s.NetPL += st.Order.RealizedPL
	s.Outcomes[st.Decision.Outcome]++
	if st.Decision.Lots > s.PeakLots {
		s.PeakLots = st.Decision.Lots
	}

	key := st.Signal.Strategy + "|" + st.Signal.Symbol
	switch pl := st.Order.PL(); {
	case st.Order.IsBalance() || pl == 0:
		s.Breakeven++
	case pl > 0:
		s.Wins++
		a.runs[key] = 0
	default:
		s.Losses++
		a.runs[key]++
		if a.runs[key] > s.LongestRun {
			s.LongestRun = a.runs[key]
		}
	}

	d := st.Decision
	switch {
	case d.Outcome == risk.OutcomeMaxClamp:
		s.Notes = append(s.Notes, fmt.Sprintf("%s %s: size capped at %g lots after %d losses",
			t.Format(time.RFC3339), key, p.MaxLots, d.LossCount))
	case d.LossCount > p.MaxStreak && d.EffectiveCount == 0 && d.Outcome != risk.OutcomeNoStop && d.Outcome != risk.OutcomeDegenerate:
		s.Notes = append(s.Notes, fmt.Sprintf("%s %s: streak of %d exceeded max_streak %d, risk reset to baseline",
			t.Format(time.RFC3339), key, d.LossCount, p.MaxStreak))
	}
}

func (a *accumulator) summary() Summary {
	return a.s
}

// ToRun converts the summary into a journal entry for the run.
func (s Summary) ToRun(strategy, symbol, dataset string, p risk.Params) journal.ReplayRun {
	return journal.ReplayRun{
		RunID:          id.New(),
		Created:        time.Now(),
		Dataset:        dataset,
		Strategy:       strategy,
		Symbol:         symbol,
		RiskedMoney:    p.RiskedMoney,
		RiskMultiplier: p.RiskMultiplier,
		MaxStreak:      p.MaxStreak,
		MinLots:        p.MinLots,
		MaxLots:        p.MaxLots,
		SizeDecimals:   p.SizeDecimals,
		Start:          s.Start,
		End:            s.End,
		Trades:         s.Trades,
		Wins:           s.Wins,
		Losses:         s.Losses,
		Breakeven:      s.Breakeven,
		LongestRun:     s.LongestRun,
		PeakLots:       s.PeakLots,
		NetPL:          s.NetPL,
		Notes:          append([]string(nil), s.Notes...),
	}
}
