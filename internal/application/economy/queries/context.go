package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// PriceProvider supplies the current price table (cache plus manual overrides)
type PriceProvider interface {
	CurrentPrices(ctx context.Context) (market.PriceTable, error)
}

// Environment is the fixed input shared by every economy query handler
type Environment struct {
	Catalog       *recipe.Catalog
	Defaults      economy.Defaults
	DefaultSalary float64
	Prices        PriceProvider
}

// prices returns explicit when given, otherwise the provider's current table
func (e Environment) prices(ctx context.Context, explicit *market.PriceTable) (market.PriceTable, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if e.Prices == nil {
		return market.EmptyPriceTable(), nil
	}
	table, err := e.Prices.CurrentPrices(ctx)
	if err != nil {
		return market.PriceTable{}, fmt.Errorf("failed to load prices: %w", err)
	}
	return table, nil
}

func (e Environment) salary(explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	return e.DefaultSalary
}

// facilities validates and clamps the facility snapshot
func (e Environment) facilities(params []production.FacilityParams) ([]*production.Facility, error) {
	out := make([]*production.Facility, 0, len(params))
	for i, p := range params {
		f, err := production.NewFacility(p, e.Defaults)
		if err != nil {
			return nil, fmt.Errorf("facility %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
