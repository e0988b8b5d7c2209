package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/lotsizer/market"
)

func win(strategy, symbol string) market.Order {
	return market.Order{Strategy: strategy, Symbol: symbol, Side: market.Long, OpenPrice: 100, ClosePrice: 101, Size: 1}
}

func loss(strategy, symbol string) market.Order {
	return market.Order{Strategy: strategy, Symbol: symbol, Side: market.Long, OpenPrice: 100, ClosePrice: 99, Size: 1}
}

func balance(strategy, symbol string) market.Order {
	return market.Order{Strategy: strategy, Symbol: symbol, Side: market.Long, OpenPrice: 100, ClosePrice: 100}
}

func TestCountRecentLosses(t *testing.T) {
	t.Parallel()

	const s, sym = "geo", "EUR_USD"

	shortLoss := market.Order{Strategy: s, Symbol: sym, Side: market.Short, OpenPrice: 100, ClosePrice: 100.5}
	shortWin := market.Order{Strategy: s, Symbol: sym, Side: market.Short, OpenPrice: 100, ClosePrice: 99.5}

	tests := []struct {
		name   string
		orders []market.Order
		want   int
	}{
		{"empty history", nil, 0},
		{"latest is a win", []market.Order{loss(s, sym), loss(s, sym), win(s, sym)}, 0},
		{"two losses after a win", []market.Order{loss(s, sym), win(s, sym), loss(s, sym), loss(s, sym)}, 2},
		{"all losses", []market.Order{loss(s, sym), loss(s, sym), loss(s, sym)}, 3},
		{"balance orders skipped", []market.Order{win(s, sym), loss(s, sym), balance(s, sym), loss(s, sym), balance(s, sym)}, 2},
		{"other strategy skipped", []market.Order{win(s, sym), loss(s, sym), win("other", sym), loss(s, sym)}, 2},
		{"other symbol skipped", []market.Order{win(s, sym), loss(s, sym), win(s, "USD_JPY")}, 1},
		{"short side", []market.Order{shortWin, shortLoss, shortLoss}, 2},
		{"short win stops", []market.Order{shortLoss, shortWin}, 0},
		{"only foreign orders", []market.Order{loss("x", sym), loss(s, "y")}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CountRecentLosses(tt.orders, s, sym))
		})
	}
}

func TestCountRecentLossesUnbounded(t *testing.T) {
	t.Parallel()

	orders := make([]market.Order, 0, 250)
	for i := 0; i < 250; i++ {
		orders = append(orders, loss("geo", "EUR_USD"))
	}
	assert.Equal(t, 250, CountRecentLosses(orders, "geo", "EUR_USD"))
}
