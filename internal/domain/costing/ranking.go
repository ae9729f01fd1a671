package costing

import (
	"sort"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// ProfitabilityRecord is the derived profitability of one catalog item
type ProfitabilityRecord struct {
	Recipe         *recipe.Recipe
	MarketPrice    float64
	ProductionCost float64
	NetProfit      float64
	ProfitMargin   float64 // percent of market price; 0 when the price is 0
}

// Profitability computes the record for a single recipe
func (r *Resolver) Profitability(rec *recipe.Recipe) (ProfitabilityRecord, error) {
	cost, err := r.Cost(rec.ID())
	if err != nil {
		return ProfitabilityRecord{}, err
	}

	price := r.defaults.PriceOf(r.prices, rec.ID())
	net := price - cost
	margin := 0.0
	if price > 0 {
		margin = net / price * 100
	}

	return ProfitabilityRecord{
		Recipe:         rec,
		MarketPrice:    price,
		ProductionCost: cost,
		NetProfit:      net,
		ProfitMargin:   margin,
	}, nil
}

// Rank computes a record for every catalog entry and orders them by net
// profit, highest first. Equal profits keep catalog order.
func Rank(
	catalog *recipe.Catalog,
	salaryPerWorkPoint float64,
	prices market.PriceTable,
	defaults economy.Defaults,
) ([]ProfitabilityRecord, error) {
	resolver, err := NewResolver(catalog, prices, salaryPerWorkPoint, defaults)
	if err != nil {
		return nil, err
	}

	records := make([]ProfitabilityRecord, 0, catalog.Len())
	for _, rec := range catalog.All() {
		record, err := resolver.Profitability(rec)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].NetProfit > records[j].NetProfit
	})

	return records, nil
}
