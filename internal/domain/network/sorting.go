package network

import (
	"fmt"
	"sort"
	"strings"
)

// NoMargin is reported as the margin of an item whose output has no market value
const NoMargin = -999.0

// SortKey selects the column used to order item stats
type SortKey string

const (
	SortByItem      SortKey = "item"
	SortByPrice     SortKey = "price"
	SortByUnitCost  SortKey = "unit_cost"
	SortByNetProfit SortKey = "net_profit"
	SortByMargin    SortKey = "margin"
)

// ParseSortKey validates a user-supplied sort key
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortByItem, SortByPrice, SortByUnitCost, SortByNetProfit, SortByMargin:
		return k, nil
	case "":
		return SortByNetProfit, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// UnitCost is total daily spend divided by daily yield; 0 when nothing is produced
func (s ItemEconomicStats) UnitCost() float64 {
	if s.DailyYield == 0 {
		return 0
	}
	return (s.MarketExpenses + s.LaborCost) / s.DailyYield
}

// Margin is net profit as a percentage of the market value of the full yield
func (s ItemEconomicStats) Margin() float64 {
	value := s.DailyYield * s.MarketPrice
	if value == 0 {
		return NoMargin
	}
	return s.NetProfitPerDay / value * 100
}

// SortStats returns a sorted copy of items. The input slice is untouched.
func SortStats(items []ItemEconomicStats, key SortKey, ascending bool) []ItemEconomicStats {
	out := make([]ItemEconomicStats, len(items))
	copy(out, items)

	value := func(s ItemEconomicStats) float64 {
		switch key {
		case SortByPrice:
			return s.MarketPrice
		case SortByUnitCost:
			return s.UnitCost()
		case SortByMargin:
			return s.Margin()
		default:
			return s.NetProfitPerDay
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if key == SortByItem {
			a, b := strings.ToLower(out[i].ItemID), strings.ToLower(out[j].ItemID)
			if ascending {
				return a < b
			}
			return a > b
		}
		if ascending {
			return value(out[i]) < value(out[j])
		}
		return value(out[i]) > value(out[j])
	})
	return out
}
