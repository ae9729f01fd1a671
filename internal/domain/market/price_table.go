package market

import (
	"fmt"
	"math"
	"sort"

	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// PriceTable maps item ids to non-negative unit prices. It is built fresh for
// each computation and never mutated afterwards. Keys are case-insensitive.
type PriceTable struct {
	prices map[string]float64
}

// NewPriceTable validates every entry and builds a table
func NewPriceTable(prices map[string]float64) (PriceTable, error) {
	t := PriceTable{prices: make(map[string]float64, len(prices))}
	for id, p := range prices {
		if err := validatePrice(id, p); err != nil {
			return PriceTable{}, err
		}
		t.prices[recipe.NormalizeID(id)] = p
	}
	return t, nil
}

// MustNewPriceTable panics on invalid entries; intended for fixtures
func MustNewPriceTable(prices map[string]float64) PriceTable {
	t, err := NewPriceTable(prices)
	if err != nil {
		panic(err)
	}
	return t
}

// EmptyPriceTable has no entries
func EmptyPriceTable() PriceTable {
	return PriceTable{prices: map[string]float64{}}
}

func validatePrice(id string, p float64) error {
	if recipe.NormalizeID(id) == "" {
		return ErrInvalidItemID
	}
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return fmt.Errorf("%w: %s=%v", ErrInvalidPrice, id, p)
	}
	return nil
}

// Lookup returns the price for itemID and whether it is defined
func (t PriceTable) Lookup(itemID string) (float64, bool) {
	p, ok := t.prices[recipe.NormalizeID(itemID)]
	return p, ok
}

// Has reports whether a price is defined for itemID
func (t PriceTable) Has(itemID string) bool {
	_, ok := t.Lookup(itemID)
	return ok
}

func (t PriceTable) Len() int {
	return len(t.prices)
}

// With returns a copy of the table with one entry replaced
func (t PriceTable) With(itemID string, price float64) (PriceTable, error) {
	if err := validatePrice(itemID, price); err != nil {
		return PriceTable{}, err
	}
	out := PriceTable{prices: make(map[string]float64, len(t.prices)+1)}
	for k, v := range t.prices {
		out.prices[k] = v
	}
	out.prices[recipe.NormalizeID(itemID)] = price
	return out, nil
}

// Map returns a copy of the entries keyed by normalized item id
func (t PriceTable) Map() map[string]float64 {
	out := make(map[string]float64, len(t.prices))
	for k, v := range t.prices {
		out[k] = v
	}
	return out
}

// ItemIDs returns the normalized ids with a defined price, sorted
func (t PriceTable) ItemIDs() []string {
	ids := make([]string, 0, len(t.prices))
	for k := range t.prices {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}
