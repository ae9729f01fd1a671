package network

import (
	"fmt"
	"math"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// Reconcile computes per-item economics and a grand total over a fixed
// facility snapshot. Both modes share the first pass (production and
// consumption per item) and are otherwise computed independently.
//
// Supply-chain mode draws every consumer's input from a single remaining
// pool per item, walking consumers in first-seen order, so the total
// allocated internally never exceeds what the network produces. When two
// different items share an input, later consumers therefore buy more than
// they would if each were matched against the full production alone.
func Reconcile(
	outputs []FacilityOutput,
	catalog *recipe.Catalog,
	prices market.PriceTable,
	mode Mode,
	defaults economy.Defaults,
) (*Report, error) {
	l := buildLedger(outputs, catalog)

	report := &Report{
		Mode:  mode,
		Flows: l.flows(),
	}

	switch mode {
	case ModeStandard:
		reconcileStandard(l, prices, defaults, report)
	case ModeSupplyChain:
		reconcileSupplyChain(l, prices, defaults, report)
	default:
		return nil, fmt.Errorf("unknown reconciliation mode: %q", mode)
	}

	for _, item := range report.Items {
		report.TotalRevenue += item.Revenue
		report.GrandTotalProfit += item.NetProfitPerDay
	}
	return report, nil
}

func reconcileStandard(l *ledger, prices market.PriceTable, defaults economy.Defaults, report *Report) {
	for _, g := range l.groups {
		price := defaults.PriceOf(prices, g.itemID)
		stats := ItemEconomicStats{
			ItemID:             g.itemID,
			FacilityCount:      g.facilityCount,
			MarketPrice:        price,
			DailyYield:         g.output,
			ConsumedInternally: math.Min(l.produced[g.key], l.consumed[g.key]),
			Surplus:            g.output,
			Revenue:            g.output * price,
			LaborCost:          g.labor,
		}

		for _, in := range g.inputs {
			needed := in.Quantity * g.output
			stats.MarketExpenses += needed * defaults.PriceOf(prices, in.ItemID)
			report.Allocations = append(report.Allocations, InputAllocation{
				ConsumerItemID: g.itemID,
				InputItemID:    l.names[recipe.NormalizeID(in.ItemID)],
				Needed:         needed,
				Market:         needed,
			})
		}

		stats.NetProfitPerDay = stats.Revenue - (stats.MarketExpenses + stats.LaborCost)
		stats.Classification = classifyStandard(stats.NetProfitPerDay)
		report.Items = append(report.Items, stats)
	}
}

// classifyStandard needs a strictly positive net; break-even is a Loss
func classifyStandard(net float64) Classification {
	if net > 0 {
		return Profitable
	}
	return Loss
}

func reconcileSupplyChain(l *ledger, prices market.PriceTable, defaults economy.Defaults, report *Report) {
	pool := make(map[string]float64, len(l.produced))
	for key, amount := range l.produced {
		pool[key] = amount
	}

	for _, g := range l.groups {
		price := defaults.PriceOf(prices, g.itemID)
		produced := l.produced[g.key]
		consumed := l.consumed[g.key]
		surplus := math.Max(0, produced-consumed)

		stats := ItemEconomicStats{
			ItemID:             g.itemID,
			FacilityCount:      g.facilityCount,
			MarketPrice:        price,
			DailyYield:         g.output,
			ConsumedInternally: math.Min(produced, consumed),
			Surplus:            surplus,
			Revenue:            surplus * price,
			LaborCost:          g.labor,
		}

		for _, in := range g.inputs {
			inKey := recipe.NormalizeID(in.ItemID)
			inPrice := defaults.PriceOf(prices, in.ItemID)
			needed := in.Quantity * g.output
			available := pool[inKey]
			internal := math.Min(needed, available)
			bought := math.Max(0, needed-available)
			pool[inKey] = available - internal

			stats.MarketExpenses += bought * inPrice
			stats.SupplyChainSavings += internal * inPrice
			if internal > 0 {
				stats.InternalInputs = append(stats.InternalInputs, ItemQuantity{
					ItemID:   l.names[inKey],
					Quantity: internal,
				})
			}
			report.Allocations = append(report.Allocations, InputAllocation{
				ConsumerItemID: g.itemID,
				InputItemID:    l.names[inKey],
				Needed:         needed,
				Internal:       internal,
				Market:         bought,
			})
		}

		stats.NetProfitPerDay = stats.Revenue - (stats.MarketExpenses + stats.LaborCost)
		if produced > 0 && stats.ConsumedInternally > defaults.InternalUseThreshold*produced {
			stats.Classification = InternalUse
		} else {
			stats.Classification = classifyByProfit(stats.NetProfitPerDay)
		}
		report.Items = append(report.Items, stats)
	}
}

// classifyByProfit is the supply-chain rule for items mostly sold: break-even
// counts as Profitable
func classifyByProfit(net float64) Classification {
	if net >= 0 {
		return Profitable
	}
	return Loss
}

// CompareModes runs both reconciliations over the same snapshot
func CompareModes(
	outputs []FacilityOutput,
	catalog *recipe.Catalog,
	prices market.PriceTable,
	defaults economy.Defaults,
) (standard *Report, supplyChain *Report, err error) {
	if standard, err = Reconcile(outputs, catalog, prices, ModeStandard, defaults); err != nil {
		return nil, nil, err
	}
	if supplyChain, err = Reconcile(outputs, catalog, prices, ModeSupplyChain, defaults); err != nil {
		return nil, nil, err
	}
	return standard, supplyChain, nil
}
