package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

func fishCatalog() *recipe.Catalog {
	return recipe.MustNewCatalog(
		recipe.MustNewRecipe("fish", "Fish", nil, 1, true),
		recipe.MustNewRecipe("cookedFish", "Cooked Fish", []recipe.Input{{ItemID: "fish", Quantity: 1}}, 2, false),
		recipe.MustNewRecipe("fishSoup", "Fish Soup", []recipe.Input{{ItemID: "fish", Quantity: 1}}, 2, false),
		recipe.MustNewRecipe("feast", "Feast", []recipe.Input{
			{ItemID: "cookedFish", Quantity: 2},
			{ItemID: "fishSoup", Quantity: 1},
		}, 5, false),
	)
}

func statsFor(t *testing.T, report *network.Report, itemID string) network.ItemEconomicStats {
	t.Helper()
	for _, s := range report.Items {
		if s.ItemID == itemID {
			return s
		}
	}
	t.Fatalf("no stats for %s", itemID)
	return network.ItemEconomicStats{}
}

func TestReconcile_SupplyChain_FishScenario(t *testing.T) {
	// Arrange
	outputs := []network.FacilityOutput{
		{FacilityID: "A", ItemID: "fish", OutputRate: 100},
		{FacilityID: "B", ItemID: "cookedFish", OutputRate: 60},
	}
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2})

	// Act
	report, err := network.Reconcile(outputs, fishCatalog(), prices, network.ModeSupplyChain, economy.StandardDefaults())

	// Assert
	require.NoError(t, err)

	fish := statsFor(t, report, "fish")
	assert.InDelta(t, 100.0, fish.DailyYield, 1e-9)
	assert.InDelta(t, 60.0, fish.ConsumedInternally, 1e-9)
	assert.InDelta(t, 40.0, fish.Surplus, 1e-9)
	assert.InDelta(t, 80.0, fish.Revenue, 1e-9)
	assert.Equal(t, network.InternalUse, fish.Classification)

	cooked := statsFor(t, report, "cookedFish")
	assert.InDelta(t, 0.0, cooked.MarketExpenses, 1e-9)
	assert.InDelta(t, 120.0, cooked.SupplyChainSavings, 1e-9)
	require.Len(t, cooked.InternalInputs, 1)
	assert.Equal(t, network.ItemQuantity{ItemID: "fish", Quantity: 60}, cooked.InternalInputs[0])

	flows := network.Flows(outputs, fishCatalog())
	assert.Equal(t, network.NetworkFlowEntry{ItemID: "fish", Produced: 100, Consumed: 60, Net: 40}, flows[0])
}

func TestReconcile_Standard_SellsEverythingBuysEverything(t *testing.T) {
	// Arrange
	outputs := []network.FacilityOutput{
		{FacilityID: "A", ItemID: "fish", OutputRate: 100, LaborCost: 10},
		{FacilityID: "B", ItemID: "cookedFish", OutputRate: 60, LaborCost: 15},
	}
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2, "cookedFish": 3})

	// Act
	report, err := network.Reconcile(outputs, fishCatalog(), prices, network.ModeStandard, economy.StandardDefaults())

	// Assert
	require.NoError(t, err)
	fish := statsFor(t, report, "fish")
	assert.InDelta(t, 200.0, fish.Revenue, 1e-9)
	assert.InDelta(t, 190.0, fish.NetProfitPerDay, 1e-9)
	assert.Equal(t, network.Profitable, fish.Classification)

	cooked := statsFor(t, report, "cookedFish")
	assert.InDelta(t, 180.0, cooked.Revenue, 1e-9)
	assert.InDelta(t, 120.0, cooked.MarketExpenses, 1e-9)
	assert.InDelta(t, 0.0, cooked.SupplyChainSavings, 1e-9)
	assert.Empty(t, cooked.InternalInputs)
	assert.InDelta(t, 45.0, cooked.NetProfitPerDay, 1e-9)

	assert.InDelta(t, 235.0, report.GrandTotalProfit, 1e-9)
	assert.InDelta(t, 380.0, report.TotalRevenue, 1e-9)
}

func TestReconcile_ModesAreComputedIndependently(t *testing.T) {
	outputs := []network.FacilityOutput{
		{FacilityID: "A", ItemID: "fish", OutputRate: 100, LaborCost: 10},
		{FacilityID: "B", ItemID: "cookedFish", OutputRate: 60, LaborCost: 15},
	}
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2, "cookedFish": 3})

	standard, supplyChain, err := network.CompareModes(outputs, fishCatalog(), prices, economy.StandardDefaults())

	require.NoError(t, err)
	// supply chain: fish 40*2 - 10 = 70, cooked 180 - 15 = 165
	assert.InDelta(t, 235.0, supplyChain.GrandTotalProfit, 1e-9)
	assert.InDelta(t, 260.0, supplyChain.TotalRevenue, 1e-9)
	assert.LessOrEqual(t, supplyChain.TotalRevenue, standard.TotalRevenue)
	assert.Equal(t, network.ModeStandard, standard.Mode)
	assert.Equal(t, network.ModeSupplyChain, supplyChain.Mode)
}

func TestReconcile_NoSharingMakesModesAgree(t *testing.T) {
	// both consume fish but nothing in the set produces it
	outputs := []network.FacilityOutput{
		{FacilityID: "A", ItemID: "fishSoup", OutputRate: 10, LaborCost: 1},
		{FacilityID: "B", ItemID: "cookedFish", OutputRate: 5, LaborCost: 1},
	}
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2, "cookedFish": 3, "fishSoup": 4})

	standard, supplyChain, err := network.CompareModes(outputs, fishCatalog(), prices, economy.StandardDefaults())

	require.NoError(t, err)
	assert.InDelta(t, 23.0, standard.GrandTotalProfit, 1e-9)
	assert.InDelta(t, standard.GrandTotalProfit, supplyChain.GrandTotalProfit, 1e-9)
}

func TestReconcile_SharedPoolConservation(t *testing.T) {
	// Arrange: 100 fish feed two consumers needing 60 each
	outputs := []network.FacilityOutput{
		{FacilityID: "A", ItemID: "fish", OutputRate: 100},
		{FacilityID: "B", ItemID: "cookedFish", OutputRate: 60},
		{FacilityID: "C", ItemID: "fishSoup", OutputRate: 60},
	}
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2})

	// Act
	report, err := network.Reconcile(outputs, fishCatalog(), prices, network.ModeSupplyChain, economy.StandardDefaults())

	// Assert
	require.NoError(t, err)
	require.Len(t, report.Allocations, 2)

	totalInternal := 0.0
	for _, a := range report.Allocations {
		assert.InDelta(t, a.Needed, a.Internal+a.Market, 1e-9)
		assert.GreaterOrEqual(t, a.Market, 0.0)
		totalInternal += a.Internal
	}
	assert.InDelta(t, 100.0, totalInternal, 1e-9)

	assert.Equal(t, "cookedFish", report.Allocations[0].ConsumerItemID)
	assert.InDelta(t, 60.0, report.Allocations[0].Internal, 1e-9)
	assert.InDelta(t, 40.0, report.Allocations[1].Internal, 1e-9)
	assert.InDelta(t, 20.0, report.Allocations[1].Market, 1e-9)

	soup := statsFor(t, report, "fishSoup")
	assert.InDelta(t, 40.0, soup.MarketExpenses, 1e-9)
	assert.InDelta(t, 80.0, soup.SupplyChainSavings, 1e-9)

	fish := statsFor(t, report, "fish")
	assert.Equal(t, 0.0, fish.Surplus)
	assert.Equal(t, 0.0, fish.Revenue)
}

func TestReconcile_SupplyChainClassification(t *testing.T) {
	catalog := fishCatalog()
	defaults := economy.StandardDefaults()
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2, "cookedFish": 1})

	t.Run("exactly half consumed is not internal use", func(t *testing.T) {
		report, err := network.Reconcile([]network.FacilityOutput{
			{FacilityID: "A", ItemID: "fish", OutputRate: 100},
			{FacilityID: "B", ItemID: "cookedFish", OutputRate: 50},
		}, catalog, prices, network.ModeSupplyChain, defaults)
		require.NoError(t, err)

		assert.Equal(t, network.Profitable, statsFor(t, report, "fish").Classification)
	})

	t.Run("negative net is a loss", func(t *testing.T) {
		report, err := network.Reconcile([]network.FacilityOutput{
			{FacilityID: "B", ItemID: "cookedFish", OutputRate: 10, LaborCost: 5},
		}, catalog, prices, network.ModeSupplyChain, defaults)
		require.NoError(t, err)

		cooked := statsFor(t, report, "cookedFish")
		// revenue 10*1, fish bought 10*2, labor 5
		assert.InDelta(t, -15.0, cooked.NetProfitPerDay, 1e-9)
		assert.Equal(t, network.Loss, cooked.Classification)
	})

	t.Run("zero production is never internal use", func(t *testing.T) {
		report, err := network.Reconcile([]network.FacilityOutput{
			{FacilityID: "A", ItemID: "fish", OutputRate: 0},
		}, catalog, prices, network.ModeSupplyChain, defaults)
		require.NoError(t, err)

		assert.Equal(t, network.Profitable, statsFor(t, report, "fish").Classification)
	})
}

func TestReconcile_BreakEvenClassificationDiffersByMode(t *testing.T) {
	// 10 fish at 2 each against 20 labor nets exactly 0
	outputs := []network.FacilityOutput{{FacilityID: "A", ItemID: "fish", OutputRate: 10, LaborCost: 20}}
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2})

	standard, supplyChain, err := network.CompareModes(outputs, fishCatalog(), prices, economy.StandardDefaults())

	require.NoError(t, err)
	assert.InDelta(t, 0.0, statsFor(t, standard, "fish").NetProfitPerDay, 1e-9)
	assert.Equal(t, network.Loss, statsFor(t, standard, "fish").Classification)
	assert.InDelta(t, 0.0, statsFor(t, supplyChain, "fish").NetProfitPerDay, 1e-9)
	assert.Equal(t, network.Profitable, statsFor(t, supplyChain, "fish").Classification)
}

func TestReconcile_GroupsFacilitiesByItem(t *testing.T) {
	outputs := []network.FacilityOutput{
		{FacilityID: "A", ItemID: "fish", OutputRate: 30, LaborCost: 1},
		{FacilityID: "B", ItemID: "FISH", OutputRate: 20, LaborCost: 2},
	}

	report, err := network.Reconcile(outputs, fishCatalog(), market.EmptyPriceTable(), network.ModeStandard, economy.StandardDefaults())

	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, 2, report.Items[0].FacilityCount)
	assert.InDelta(t, 50.0, report.Items[0].DailyYield, 1e-9)
	assert.InDelta(t, 3.0, report.Items[0].LaborCost, 1e-9)
	assert.Equal(t, network.Loss, report.Items[0].Classification)
}

func TestReconcile_UnknownItemAndMissingPricesDegradeToZero(t *testing.T) {
	outputs := []network.FacilityOutput{{FacilityID: "A", ItemID: "mystery", OutputRate: 10}}

	report, err := network.Reconcile(outputs, fishCatalog(), market.EmptyPriceTable(), network.ModeSupplyChain, economy.StandardDefaults())

	require.NoError(t, err)
	item := report.Items[0]
	assert.Equal(t, "mystery", item.ItemID)
	assert.Equal(t, 0.0, item.Revenue)
	assert.Equal(t, 0.0, item.NetProfitPerDay)
	assert.Equal(t, network.Profitable, item.Classification)
}

func TestReconcile_RejectsUnknownMode(t *testing.T) {
	_, err := network.Reconcile(nil, fishCatalog(), market.EmptyPriceTable(), network.Mode("barter"), economy.StandardDefaults())

	assert.Error(t, err)
}

func TestFlows_IncludeInputsAndSortByProduction(t *testing.T) {
	outputs := []network.FacilityOutput{
		{FacilityID: "B", ItemID: "cookedFish", OutputRate: 60},
		{FacilityID: "C", ItemID: "feast", OutputRate: 5},
		{FacilityID: "A", ItemID: "fish", OutputRate: 100},
	}

	flows := network.Flows(outputs, fishCatalog())

	require.Len(t, flows, 4)
	assert.Equal(t, "fish", flows[0].ItemID)
	assert.Equal(t, "cookedFish", flows[1].ItemID)
	assert.InDelta(t, 50.0, flows[1].Net, 1e-9)
	assert.Equal(t, "feast", flows[2].ItemID)
	// fishSoup is only consumed: a deficit
	assert.Equal(t, "fishSoup", flows[3].ItemID)
	assert.InDelta(t, -5.0, flows[3].Net, 1e-9)
	for _, f := range flows {
		assert.InDelta(t, f.Produced-f.Consumed, f.Net, 1e-9)
	}
}

func TestParseMode(t *testing.T) {
	m, ok := network.ParseMode("supply-chain")
	assert.True(t, ok)
	assert.Equal(t, network.ModeSupplyChain, m)

	m, ok = network.ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, network.ModeStandard, m)

	_, ok = network.ParseMode("barter")
	assert.False(t, ok)
}

func TestFromProjections_FeedsReconciler(t *testing.T) {
	// Arrange
	defaults := economy.StandardDefaults()
	catalog := fishCatalog()
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2, "cookedFish": 5})

	worker, err := production.NewWorker("w1", "", 100, 10, shared.ZeroPercent, 0.1)
	require.NoError(t, err)
	fishery, err := production.NewFacility(production.FacilityParams{
		ID: "fishery", OutputItemID: "fish", AutomationLevel: 1, Workers: []production.Worker{worker},
	}, defaults)
	require.NoError(t, err)
	kitchen, err := production.NewFacility(production.FacilityParams{
		ID: "kitchen", OutputItemID: "cookedFish", AutomationLevel: 5,
	}, defaults)
	require.NoError(t, err)

	projections := production.ProjectAll([]*production.Facility{fishery, kitchen}, catalog, prices, defaults)

	// Act
	report, err := network.Reconcile(network.FromProjections(projections), catalog, prices, network.ModeSupplyChain, defaults)

	// Assert
	require.NoError(t, err)
	// fishery: (240 + 24) / 1 = 264 fish; kitchen: 120 / 2 = 60 cooked fish eating 60 fish
	fish := statsFor(t, report, "fish")
	assert.InDelta(t, 264.0, fish.DailyYield, 1e-9)
	assert.InDelta(t, 24.0, fish.LaborCost, 1e-9)
	assert.InDelta(t, 204.0*2, fish.Revenue, 1e-9)
	assert.Equal(t, network.Profitable, fish.Classification)

	cooked := statsFor(t, report, "cookedFish")
	assert.InDelta(t, 60.0, cooked.DailyYield, 1e-9)
	assert.InDelta(t, 120.0, cooked.SupplyChainSavings, 1e-9)
}
