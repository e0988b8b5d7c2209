package market

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrNoPrice = errors.New("price not found")

// MarketDataSource returns the latest quotes for a symbol. Implementations
// must not block.
type MarketDataSource interface {
	CurrentAsk(symbol string) (float64, error)
	CurrentBid(symbol string) (float64, error)
}

type Tick struct {
	Symbol string
	Time   time.Time
	Bid    float64
	Ask    float64
}

func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

// TickStore keeps the last tick per symbol.
type TickStore struct {
	mu    sync.RWMutex
	ticks map[string]Tick
}

func NewTickStore() *TickStore {
	return &TickStore{ticks: make(map[string]Tick)}
}

func (ts *TickStore) Set(t Tick) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.ticks[t.Symbol] = t
}

func (ts *TickStore) Get(symbol string) (Tick, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	t, ok := ts.ticks[symbol]
	if !ok {
		return Tick{}, errors.Wrapf(ErrNoPrice, "symbol %s", symbol)
	}
	return t, nil
}

func (ts *TickStore) CurrentAsk(symbol string) (float64, error) {
	t, err := ts.Get(symbol)
	if err != nil {
		return 0, err
	}
	return t.Ask, nil
}

func (ts *TickStore) CurrentBid(symbol string) (float64, error) {
	t, err := ts.Get(symbol)
	if err != nil {
		return 0, err
	}
	return t.Bid, nil
}
