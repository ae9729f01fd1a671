package market

import (
	"time"

	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// MarketPrice is one observed average price for an item
type MarketPrice struct {
	ProductID    string
	AveragePrice float64
	LastUpdated  time.Time
}

// Snapshot is the single flat cache of the latest scrape
type Snapshot struct {
	Prices    []MarketPrice
	Timestamp time.Time
}

// DefaultStaleAfter is how old a snapshot may be before it is refreshed
const DefaultStaleAfter = time.Hour

// NewSnapshot stamps prices with the capture time
func NewSnapshot(prices []MarketPrice, timestamp time.Time) *Snapshot {
	copied := make([]MarketPrice, len(prices))
	copy(copied, prices)
	return &Snapshot{Prices: copied, Timestamp: timestamp}
}

// Age returns how long ago the snapshot was captured
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.Timestamp)
}

// IsStale reports whether the snapshot is older than maxAge. A nil snapshot is always stale.
func (s *Snapshot) IsStale(now time.Time, maxAge time.Duration) bool {
	if s == nil {
		return true
	}
	return s.Age(now) > maxAge
}

// PriceTable projects the snapshot into a lookup table
func (s *Snapshot) PriceTable() (PriceTable, error) {
	if s == nil {
		return EmptyPriceTable(), nil
	}
	return MergePrices(s.Prices, nil)
}

// MergePrices combines scraped prices with manual overrides. An override always
// wins when present; overrides for items that were never scraped are included too.
func MergePrices(scraped []MarketPrice, overrides map[string]float64) (PriceTable, error) {
	merged := make(map[string]float64, len(scraped)+len(overrides))
	for _, p := range scraped {
		merged[recipe.NormalizeID(p.ProductID)] = p.AveragePrice
	}
	for id, p := range overrides {
		merged[recipe.NormalizeID(id)] = p
	}
	return NewPriceTable(merged)
}
