package network

import (
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// Mode selects the accounting policy used by the reconciler
type Mode string

const (
	// ModeStandard treats every facility as independent: all inputs are bought
	// and all output is sold at market price
	ModeStandard Mode = "standard"

	// ModeSupplyChain nets internal production against internal consumption
	// before pricing anything
	ModeSupplyChain Mode = "supply_chain"
)

// ParseMode accepts "standard" or "supply_chain" (also "supply-chain")
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", string(ModeStandard):
		return ModeStandard, true
	case string(ModeSupplyChain), "supply-chain", "supplychain":
		return ModeSupplyChain, true
	}
	return "", false
}

// Classification is an item's market role in the network
type Classification string

const (
	Profitable  Classification = "PROFITABLE"
	InternalUse Classification = "INTERNAL_USE"
	Loss        Classification = "LOSS"
)

// FacilityOutput is the part of a facility projection the reconciler needs
type FacilityOutput struct {
	FacilityID string
	ItemID     string
	OutputRate float64 // units per day
	LaborCost  float64 // daily wages
}

// FromProjections adapts facility projections to reconciler input
func FromProjections(projections []production.Projection) []FacilityOutput {
	out := make([]FacilityOutput, len(projections))
	for i, p := range projections {
		out[i] = FacilityOutput{
			FacilityID: p.FacilityID,
			ItemID:     p.OutputItemID,
			OutputRate: p.OutputRate,
			LaborCost:  p.DailyWages,
		}
	}
	return out
}

// NetworkFlowEntry is the system-wide daily balance of one item
type NetworkFlowEntry struct {
	ItemID   string
	Produced float64
	Consumed float64
	Net      float64 // produced - consumed; negative is a deficit
}

// ItemQuantity is an amount of an item
type ItemQuantity struct {
	ItemID   string
	Quantity float64
}

// InputAllocation records how one consumer's need for one input was covered
type InputAllocation struct {
	ConsumerItemID string
	InputItemID    string
	Needed         float64
	Internal       float64
	Market         float64
}

// ItemEconomicStats is the reconciled daily economics of one produced item
type ItemEconomicStats struct {
	ItemID        string
	FacilityCount int
	MarketPrice   float64

	DailyYield         float64 // total units produced per day
	ConsumedInternally float64 // units of this item used by other facilities in the set
	Surplus            float64 // units sold externally (supply-chain mode)

	Revenue            float64
	MarketExpenses     float64
	InternalInputs     []ItemQuantity
	SupplyChainSavings float64
	LaborCost          float64
	NetProfitPerDay    float64

	Classification Classification
}

// Report is the output of one reconciliation pass
type Report struct {
	Mode             Mode
	Items            []ItemEconomicStats
	Flows            []NetworkFlowEntry
	Allocations      []InputAllocation
	TotalRevenue     float64
	GrandTotalProfit float64
}
