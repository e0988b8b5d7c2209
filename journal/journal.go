package journal

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rustyeddy/lotsizer/market"
)

var ErrNotFound = errors.New("order not found")

// OrderRecord is a closed order plus the bookkeeping a journal keeps for it.
type OrderRecord struct {
	market.Order
	RealizedPL float64
	Reason     string
}

// Journal persists closed orders. Journals that can be read back also
// implement market.TradeHistorySource.
type Journal interface {
	RecordOrder(OrderRecord) error
	Close() error
}

// History is a journal that the sizer can read its loss streak from.
type History interface {
	Journal
	market.TradeHistorySource
}

// Open returns the journal of the given kind: "sqlite", "csv" (appending) or
// "memory".
func Open(kind, path string) (History, error) {
	switch kind {
	case "sqlite":
		return NewSQLite(path)
	case "csv":
		return OpenCSV(path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.Errorf("unknown journal type %q", kind)
	}
}

// Records loads every record a journal holds, oldest first.
func Records(ctx context.Context, h History) ([]OrderRecord, error) {
	switch j := h.(type) {
	case *SQLite:
		return j.ListAllOrders(ctx)
	case *CSV:
		return j.mem.Records(), nil
	case *Memory:
		return j.Records(), nil
	default:
		return nil, errors.Errorf("cannot list records of %T", h)
	}
}

func ordersOf(recs []OrderRecord) []market.Order {
	out := make([]market.Order, len(recs))
	for i, r := range recs {
		out[i] = r.Order
	}
	return out
}
