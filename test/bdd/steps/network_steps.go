package steps

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
)

func (ctx *economyContext) facilityOutputs(table *godog.Table) error {
	ctx.outputs = nil
	for _, row := range table.Rows[1:] {
		rate, err := strconv.ParseFloat(getCellValueFromTable(table, row, "rate"), 64)
		if err != nil {
			return fmt.Errorf("invalid rate: %w", err)
		}
		labor, err := strconv.ParseFloat(getCellValueFromTable(table, row, "labor"), 64)
		if err != nil {
			return fmt.Errorf("invalid labor: %w", err)
		}
		ctx.outputs = append(ctx.outputs, network.FacilityOutput{
			FacilityID: getCellValueFromTable(table, row, "facility"),
			ItemID:     getCellValueFromTable(table, row, "item"),
			OutputRate: rate,
			LaborCost:  labor,
		})
	}
	return nil
}

func (ctx *economyContext) iReconcileTheNetworkInMode(mode string) error {
	m, ok := network.ParseMode(mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", mode)
	}
	ctx.report, ctx.reportErr = network.Reconcile(ctx.outputs, ctx.catalog, ctx.prices, m, ctx.defaults)
	return nil
}

func (ctx *economyContext) itemStats(itemID string) (network.ItemEconomicStats, error) {
	if ctx.reportErr != nil {
		return network.ItemEconomicStats{}, fmt.Errorf("reconciliation failed: %w", ctx.reportErr)
	}
	if ctx.report == nil {
		return network.ItemEconomicStats{}, fmt.Errorf("network not reconciled")
	}
	for _, s := range ctx.report.Items {
		if s.ItemID == itemID {
			return s, nil
		}
	}
	return network.ItemEconomicStats{}, fmt.Errorf("item %s not in report", itemID)
}

func (ctx *economyContext) itemShouldHaveRevenueExpensesSavingsAndNet(itemID string, revenue, expenses, savings, net float64) error {
	s, err := ctx.itemStats(itemID)
	if err != nil {
		return err
	}
	for _, c := range []struct {
		name      string
		want, got float64
	}{
		{"revenue", revenue, s.Revenue},
		{"market expenses", expenses, s.MarketExpenses},
		{"supply chain savings", savings, s.SupplyChainSavings},
		{"net profit", net, s.NetProfitPerDay},
	} {
		if err := expectFloat(itemID+" "+c.name, c.want, c.got); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *economyContext) itemShouldHaveSurplusAndConsumedInternally(itemID string, surplus, consumed float64) error {
	s, err := ctx.itemStats(itemID)
	if err != nil {
		return err
	}
	if err := expectFloat(itemID+" surplus", surplus, s.Surplus); err != nil {
		return err
	}
	return expectFloat(itemID+" consumed internally", consumed, s.ConsumedInternally)
}

func (ctx *economyContext) itemShouldBeClassified(itemID, classification string) error {
	s, err := ctx.itemStats(itemID)
	if err != nil {
		return err
	}
	if string(s.Classification) != classification {
		return fmt.Errorf("expected %s to be %s, got %s", itemID, classification, s.Classification)
	}
	return nil
}

func (ctx *economyContext) itemShouldHaveFacilities(itemID string, expected int) error {
	s, err := ctx.itemStats(itemID)
	if err != nil {
		return err
	}
	if s.FacilityCount != expected {
		return fmt.Errorf("expected %d facilities for %s, got %d", expected, itemID, s.FacilityCount)
	}
	return nil
}

func (ctx *economyContext) theGrandTotalProfitShouldBe(expected float64) error {
	if ctx.reportErr != nil {
		return fmt.Errorf("reconciliation failed: %w", ctx.reportErr)
	}
	return expectFloat("grand total profit", expected, ctx.report.GrandTotalProfit)
}

func (ctx *economyContext) theInternalAllocationsOfShouldTotal(itemID string, expected float64) error {
	if ctx.reportErr != nil {
		return fmt.Errorf("reconciliation failed: %w", ctx.reportErr)
	}
	total := 0.0
	for _, a := range ctx.report.Allocations {
		if a.InputItemID == itemID {
			total += a.Internal
		}
	}
	return expectFloat("internal "+itemID, expected, total)
}
