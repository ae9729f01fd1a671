package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
)

// MockPriceSource is a test double for market.PriceSource
type MockPriceSource struct {
	mu      sync.Mutex
	prices  []market.MarketPrice
	err     error
	calls   int
	lastIDs []string

	// Gate, when set, blocks FetchPrices until it is closed
	Gate chan struct{}
}

// NewMockPriceSource returns a source that answers with prices
func NewMockPriceSource(prices ...market.MarketPrice) *MockPriceSource {
	return &MockPriceSource{prices: prices}
}

// SetPrices replaces the prices returned by later calls
func (m *MockPriceSource) SetPrices(prices ...market.MarketPrice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = prices
	m.err = nil
}

// SetError makes later calls fail
func (m *MockPriceSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FetchPrices returns the configured prices or error
func (m *MockPriceSource) FetchPrices(ctx context.Context, itemIDs []string) ([]market.MarketPrice, error) {
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastIDs = append([]string(nil), itemIDs...)
	if m.err != nil {
		return nil, m.err
	}
	return append([]market.MarketPrice(nil), m.prices...), nil
}

// Calls returns how many scrapes were made
func (m *MockPriceSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastItemIDs returns the item list of the most recent scrape
func (m *MockPriceSource) LastItemIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastIDs
}

// MockSnapshotStore is an in-memory market.SnapshotStore
type MockSnapshotStore struct {
	mu       sync.Mutex
	snapshot *market.Snapshot
	saves    int

	LoadErr error
	SaveErr error
}

// NewMockSnapshotStore returns a store holding snapshot (may be nil)
func NewMockSnapshotStore(snapshot *market.Snapshot) *MockSnapshotStore {
	return &MockSnapshotStore{snapshot: snapshot}
}

// Load returns the stored snapshot
func (m *MockSnapshotStore) Load(ctx context.Context) (*market.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.snapshot, nil
}

// Save replaces the stored snapshot
func (m *MockSnapshotStore) Save(ctx context.Context, snapshot *market.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.snapshot = snapshot
	m.saves++
	return nil
}

// Saves returns how many snapshots were written
func (m *MockSnapshotStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Snapshot returns the stored snapshot
func (m *MockSnapshotStore) Snapshot() *market.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}
