package replay

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rustyeddy/lotsizer/market"
)

// Signal is one closed trade idea: the quote at entry, where it was entered,
// where the stop sat and where it got out.
//
// CSV layout:
//
//	time,strategy,symbol,side,bid,ask,entry,stop,exit
//
// entry 0 fills at the quote (ask for long, bid for short). stop 0 means the
// order had no stop loss.
type Signal struct {
	Time     time.Time
	Strategy string
	Symbol   string
	Side     market.Side
	Bid      float64
	Ask      float64
	Entry    float64
	Stop     float64
	Exit     float64
}

func (s Signal) Tick() market.Tick {
	return market.Tick{Symbol: s.Symbol, Time: s.Time, Bid: s.Bid, Ask: s.Ask}
}

// ReadSignals loads a signal CSV. A header row starting with "time" is
// optional.
func ReadSignals(path string) ([]Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open signals")
	}
	defer f.Close()

	sigs, err := ParseSignals(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return sigs, nil
}

func ParseSignals(rd io.Reader) ([]Signal, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.Comment = '#'

	var out []Signal
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		sig, err := parseSignal(row)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		out = append(out, sig)
	}
}

func parseSignal(row []string) (Signal, error) {
	if len(row) < 9 {
		return Signal{}, errors.Errorf("bad row (need 9 cols time,strategy,symbol,side,bid,ask,entry,stop,exit): %v", row)
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	var (
		sig Signal
		err error
	)
	if sig.Time, err = time.Parse(time.RFC3339, row[0]); err != nil {
		return sig, errors.Wrapf(err, "bad time %q", row[0])
	}
	sig.Strategy = row[1]
	sig.Symbol = row[2]
	if sig.Strategy == "" || sig.Symbol == "" {
		return sig, errors.New("strategy and symbol are required")
	}
	if sig.Side, err = market.ParseSide(row[3]); err != nil {
		return sig, err
	}

	floats := []struct {
		name string
		dst  *float64
		src  string
	}{
		{"bid", &sig.Bid, row[4]},
		{"ask", &sig.Ask, row[5]},
		{"entry", &sig.Entry, row[6]},
		{"stop", &sig.Stop, row[7]},
		{"exit", &sig.Exit, row[8]},
	}
	for _, fl := range floats {
		if fl.src == "" {
			continue
		}
		v, err := strconv.ParseFloat(fl.src, 64)
		if err != nil {
			return sig, errors.Wrapf(err, "bad %s %q", fl.name, fl.src)
		}
		*fl.dst = v
	}

	if sig.Exit <= 0 {
		return sig, errors.Errorf("exit must be positive, got %g", sig.Exit)
	}
	return sig, nil
}
