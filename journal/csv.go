package journal

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rustyeddy/lotsizer/market"
)

var csvHeader = []string{
	"order_id", "strategy", "symbol", "side", "size",
	"open_price", "close_price", "open_time", "close_time", "realized_pl", "reason",
}

// CSV appends closed orders to a CSV file. It keeps what it wrote in memory
// so it can serve as a history source for the sizer while it is open.
type CSV struct {
	w   *csv.Writer
	f   *os.File
	mem *Memory
}

// NewCSV creates (truncates) path and writes the header.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create csv journal")
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f, mem: NewMemory()}, nil
}

// OpenCSV appends to an existing CSV journal, loading what is already there as
// history. A missing file is created with a header.
func OpenCSV(path string) (*CSV, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewCSV(path)
	}

	recs, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open csv journal")
	}
	return &CSV{w: csv.NewWriter(f), f: f, mem: NewMemory(recs...)}, nil
}

func (j *CSV) RecordOrder(r OrderRecord) error {
	if err := j.w.Write(csvRow(r)); err != nil {
		return err
	}
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.mem.RecordOrder(r)
}

func (j *CSV) OrdersForStrategy(ctx context.Context, strategy string) ([]market.Order, error) {
	return j.mem.OrdersForStrategy(ctx, strategy)
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

// WriteCSV writes recs to path in journal format.
func WriteCSV(path string, recs []OrderRecord) error {
	j, err := NewCSV(path)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := j.w.Write(csvRow(r)); err != nil {
			_ = j.f.Close()
			return err
		}
	}
	return j.Close()
}

// ReadCSV loads a CSV journal. Rows keep file order, which is expected to be
// oldest first.
func ReadCSV(path string) ([]OrderRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open csv journal")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []OrderRecord
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
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "order_id") {
			continue
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", path, line)
		}
		out = append(out, rec)
	}
}

func csvRow(r OrderRecord) []string {
	return []string{
		r.ID,
		r.Strategy,
		r.Symbol,
		r.Side.String(),
		f(r.Size),
		f(r.OpenPrice),
		f(r.ClosePrice),
		r.OpenTime.UTC().Format(time.RFC3339Nano),
		r.CloseTime.UTC().Format(time.RFC3339Nano),
		f(r.RealizedPL),
		r.Reason,
	}
}

func parseRow(row []string) (OrderRecord, error) {
	if len(row) < len(csvHeader) {
		return OrderRecord{}, errors.Errorf("need %d columns, got %d", len(csvHeader), len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	var (
		rec OrderRecord
		err error
	)
	rec.ID = row[0]
	rec.Strategy = row[1]
	rec.Symbol = row[2]
	if rec.Side, err = market.ParseSide(row[3]); err != nil {
		return rec, err
	}

	floats := []struct {
		name string
		src  string
		dst  *float64
	}{
		{"size", row[4], &rec.Size},
		{"open_price", row[5], &rec.OpenPrice},
		{"close_price", row[6], &rec.ClosePrice},
		{"realized_pl", row[9], &rec.RealizedPL},
	}
	for _, fl := range floats {
		v, err := strconv.ParseFloat(fl.src, 64)
		if err != nil {
			return rec, errors.Wrapf(err, "bad %s %q", fl.name, fl.src)
		}
		*fl.dst = v
	}

	if rec.OpenTime, err = time.Parse(time.RFC3339Nano, row[7]); err != nil {
		return rec, errors.Wrapf(err, "bad open_time %q", row[7])
	}
	if rec.CloseTime, err = time.Parse(time.RFC3339Nano, row[8]); err != nil {
		return rec, errors.Wrapf(err, "bad close_time %q", row[8])
	}
	rec.Reason = row[10]
	return rec, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
