package steps

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// tolerance for float assertions on values written with a few decimals
const tolerance = 1e-6

// economyContext holds the catalog, prices and results shared by the
// cost, ranking and network scenarios
type economyContext struct {
	catalog  *recipe.Catalog
	prices   market.PriceTable
	salary   float64
	defaults economy.Defaults

	// cost resolution
	breakdown *costing.CostNode
	costErr   error

	// ranking
	ranking []costing.ProfitabilityRecord
	rankErr error

	// network
	outputs   []network.FacilityOutput
	report    *network.Report
	reportErr error
}

func (ctx *economyContext) reset() {
	ctx.catalog = recipe.MustNewCatalog()
	ctx.prices = market.EmptyPriceTable()
	ctx.salary = 0
	ctx.defaults = economy.StandardDefaults()

	ctx.breakdown = nil
	ctx.costErr = nil
	ctx.ranking = nil
	ctx.rankErr = nil
	ctx.outputs = nil
	ctx.report = nil
	ctx.reportErr = nil
}

// ============================================================================
// Setup Steps
// ============================================================================

func (ctx *economyContext) aRecipeCatalog(table *godog.Table) error {
	var recipes []*recipe.Recipe
	for _, row := range table.Rows[1:] {
		workPoints, err := strconv.ParseFloat(getCellValueFromTable(table, row, "work points"), 64)
		if err != nil {
			return fmt.Errorf("invalid work points: %w", err)
		}
		inputs, err := parseInputs(getCellValueFromTable(table, row, "inputs"))
		if err != nil {
			return err
		}
		rec, err := recipe.NewRecipe(
			getCellValueFromTable(table, row, "item"),
			getCellValueFromTable(table, row, "name"),
			inputs,
			workPoints,
			getCellValueFromTable(table, row, "base") == "true",
		)
		if err != nil {
			return err
		}
		recipes = append(recipes, rec)
	}

	catalog, err := recipe.NewCatalog(recipes)
	if err != nil {
		return err
	}
	ctx.catalog = catalog
	return nil
}

func (ctx *economyContext) aSalaryOfPerWorkPoint(salary float64) error {
	ctx.salary = salary
	return nil
}

func (ctx *economyContext) marketPrices(table *godog.Table) error {
	prices := make(map[string]float64, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		p, err := strconv.ParseFloat(getCellValueFromTable(table, row, "price"), 64)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		prices[getCellValueFromTable(table, row, "item")] = p
	}

	table2, err := market.NewPriceTable(prices)
	if err != nil {
		return err
	}
	ctx.prices = table2
	return nil
}

// ============================================================================
// Registration
// ============================================================================

// RegisterEconomySteps registers the cost, ranking and network step definitions
func RegisterEconomySteps(sc *godog.ScenarioContext) {
	ctx := &economyContext{}
	sc.Before(func(bddCtx context.Context, sc *godog.Scenario) (context.Context, error) {
		ctx.reset()
		return bddCtx, nil
	})

	// Setup steps
	sc.Step(`^a recipe catalog:$`, ctx.aRecipeCatalog)
	sc.Step(`^a salary of (-?[\d.]+) per work point$`, ctx.aSalaryOfPerWorkPoint)
	sc.Step(`^market prices:$`, ctx.marketPrices)
	sc.Step(`^facility outputs:$`, ctx.facilityOutputs)

	// Action steps
	sc.Step(`^I resolve the production cost of "([^"]*)"$`, ctx.iResolveTheProductionCostOf)
	sc.Step(`^I rank the catalog by profitability$`, ctx.iRankTheCatalogByProfitability)
	sc.Step(`^I reconcile the network in "([^"]*)" mode$`, ctx.iReconcileTheNetworkInMode)

	// Cost assertions
	sc.Step(`^the production cost should be (-?[\d.]+)$`, ctx.theProductionCostShouldBe)
	sc.Step(`^the breakdown root should be "([^"]*)" with method "([^"]*)"$`, ctx.theBreakdownRootShouldBeWithMethod)
	sc.Step(`^the breakdown should contain "([^"]*)" with method "([^"]*)"$`, ctx.theBreakdownShouldContainWithMethod)
	sc.Step(`^the breakdown should have (\d+) nodes$`, ctx.theBreakdownShouldHaveNodes)
	sc.Step(`^resolution should fail with a cyclic recipe error naming "([^"]*)"$`, ctx.resolutionShouldFailWithACyclicRecipeErrorNaming)

	// Ranking assertions
	sc.Step(`^the ranking should be:$`, ctx.theRankingShouldBe)
	sc.Step(`^item "([^"]*)" should have net profit (-?[\d.]+) and margin (-?[\d.]+)$`, ctx.itemShouldHaveNetProfitAndMargin)
	sc.Step(`^the ranked items should be "([^"]*)"$`, ctx.theRankedItemsShouldBe)
	sc.Step(`^ranking should fail mentioning "([^"]*)"$`, ctx.rankingShouldFailMentioning)

	// Network assertions
	sc.Step(`^item "([^"]*)" should have revenue (-?[\d.]+), expenses (-?[\d.]+), savings (-?[\d.]+) and net (-?[\d.]+)$`,
		ctx.itemShouldHaveRevenueExpensesSavingsAndNet)
	sc.Step(`^item "([^"]*)" should have surplus (-?[\d.]+) and consumed internally (-?[\d.]+)$`,
		ctx.itemShouldHaveSurplusAndConsumedInternally)
	sc.Step(`^item "([^"]*)" should be classified "([^"]*)"$`, ctx.itemShouldBeClassified)
	sc.Step(`^item "([^"]*)" should have (\d+) facilities$`, ctx.itemShouldHaveFacilities)
	sc.Step(`^the grand total profit should be (-?[\d.]+)$`, ctx.theGrandTotalProfitShouldBe)
	sc.Step(`^the internal allocations of "([^"]*)" should total (-?[\d.]+)$`, ctx.theInternalAllocationsOfShouldTotal)
}

// ============================================================================
// Helper Functions
// ============================================================================

// parseInputs reads "grain:2, flour:1"
func parseInputs(cell string) ([]recipe.Input, error) {
	if strings.TrimSpace(cell) == "" {
		return nil, nil
	}
	var inputs []recipe.Input
	for _, part := range strings.Split(cell, ",") {
		id, qty, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid input %q, expected ITEM:QTY", part)
		}
		q, err := strconv.ParseFloat(qty, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", part, err)
		}
		inputs = append(inputs, recipe.Input{ItemID: id, Quantity: q})
	}
	return inputs, nil
}

// getCellValueFromTable gets a cell value from a table row by column name
// It uses the first row (table.Rows[0]) as the header to find the column index
func getCellValueFromTable(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}

	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}
	return ""
}

func expectFloat(name string, want, got float64) error {
	if math.Abs(want-got) > tolerance {
		return fmt.Errorf("expected %s %v, got %v", name, want, got)
	}
	return nil
}
