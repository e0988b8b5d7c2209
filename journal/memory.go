package journal

import (
	"context"
	"sync"

	"github.com/rustyeddy/lotsizer/market"
)

// Memory is an in-process journal, used for dry runs and tests.
type Memory struct {
	mu   sync.RWMutex
	recs []OrderRecord
}

func NewMemory(recs ...OrderRecord) *Memory {
	return &Memory{recs: append([]OrderRecord(nil), recs...)}
}

func (m *Memory) RecordOrder(r OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, r)
	return nil
}

func (m *Memory) OrdersForStrategy(ctx context.Context, strategy string) ([]market.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return market.History(ordersOf(m.recs)).OrdersForStrategy(ctx, strategy)
}

// Records returns a copy of everything recorded so far.
func (m *Memory) Records() []OrderRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]OrderRecord(nil), m.recs...)
}

func (m *Memory) Close() error { return nil }
