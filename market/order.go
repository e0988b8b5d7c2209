package market

import (
	"context"
	"math"
	"time"
)

// Order is a closed order as recorded by the host trading engine.
// Prices are in the instrument's native quote scale.
type Order struct {
	ID         string
	Strategy   string
	Symbol     string
	Side       Side
	Size       float64
	OpenPrice  float64
	ClosePrice float64
	OpenTime   time.Time
	CloseTime  time.Time
}

func (o Order) IsLong() bool { return o.Side == Long }

// PL is the directional price delta of the order, not scaled by size.
func (o Order) PL() float64 {
	if o.IsLong() {
		return o.ClosePrice - o.OpenPrice
	}
	return o.OpenPrice - o.ClosePrice
}

// IsBalance reports a non-economic record: it was neither a win nor a loss.
func (o Order) IsBalance() bool {
	return o.OpenPrice == o.ClosePrice
}

// Risk is the price distance travelled times size.
func (o Order) Risk() float64 {
	return math.Abs(o.OpenPrice-o.ClosePrice) * o.Size
}

// TradeHistorySource supplies the closed orders of a strategy, newest last.
type TradeHistorySource interface {
	OrdersForStrategy(ctx context.Context, strategy string) ([]Order, error)
}

// History is an in-memory, time ordered order list (newest last).
type History []Order

func (h History) OrdersForStrategy(ctx context.Context, strategy string) ([]Order, error) {
	out := make([]Order, 0, len(h))
	for _, o := range h {
		if o.Strategy == strategy {
			out = append(out, o)
		}
	}
	return out, nil
}
