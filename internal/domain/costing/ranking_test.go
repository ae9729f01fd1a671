package costing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

func TestRank_SortedByNetProfitDescending(t *testing.T) {
	// Arrange
	catalog := sandwichCatalog()
	prices := market.MustNewPriceTable(map[string]float64{
		"grain":     0.5,
		"livestock": 2,
		"bread":     6,
		"steak":     4,
		"sandwich":  30,
	})

	// Act
	records, err := costing.Rank(catalog, 1, prices, economy.StandardDefaults())

	// Assert
	require.NoError(t, err)
	require.Len(t, records, catalog.Len())
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i-1].NetProfit, records[i].NetProfit)
	}
	for _, r := range records {
		assert.InDelta(t, r.MarketPrice-r.ProductionCost, r.NetProfit, 1e-9)
	}
	assert.Equal(t, "sandwich", records[0].Recipe.ID())
}

func TestRank_TiesKeepCatalogOrder(t *testing.T) {
	catalog := recipe.MustNewCatalog(
		recipe.MustNewRecipe("zinc", "Zinc", nil, 1, true),
		recipe.MustNewRecipe("apple", "Apple", nil, 1, true),
		recipe.MustNewRecipe("moss", "Moss", nil, 1, true),
	)

	records, err := costing.Rank(catalog, 1, market.EmptyPriceTable(), economy.StandardDefaults())

	require.NoError(t, err)
	assert.Equal(t, "zinc", records[0].Recipe.ID())
	assert.Equal(t, "apple", records[1].Recipe.ID())
	assert.Equal(t, "moss", records[2].Recipe.ID())
}

func TestRank_MarginIsZeroWithoutPrice(t *testing.T) {
	records, err := costing.Rank(breadCatalog(), 1.5, market.MustNewPriceTable(map[string]float64{"grain": 0.5}), economy.StandardDefaults())

	require.NoError(t, err)
	var bread costing.ProfitabilityRecord
	for _, r := range records {
		if r.Recipe.ID() == "bread" {
			bread = r
		}
	}
	assert.Equal(t, 0.0, bread.MarketPrice)
	assert.InDelta(t, -3.5, bread.NetProfit, 1e-9)
	assert.Equal(t, 0.0, bread.ProfitMargin)
}

func TestRank_Margin(t *testing.T) {
	prices := market.MustNewPriceTable(map[string]float64{"grain": 2})

	records, err := costing.Rank(breadCatalog(), 1, prices, economy.StandardDefaults())

	require.NoError(t, err)
	grain := records[0]
	assert.Equal(t, "grain", grain.Recipe.ID())
	assert.InDelta(t, 1.0, grain.NetProfit, 1e-9)
	assert.InDelta(t, 50.0, grain.ProfitMargin, 1e-9)
}

func TestRank_PropagatesCycleError(t *testing.T) {
	catalog := recipe.MustNewCatalog(
		recipe.MustNewRecipe("a", "A", []recipe.Input{{ItemID: "a", Quantity: 1}}, 1, false),
	)

	_, err := costing.Rank(catalog, 1, market.EmptyPriceTable(), economy.StandardDefaults())

	var cyclic *recipe.CyclicRecipeError
	assert.ErrorAs(t, err, &cyclic)
}

func TestRank_NilCatalogRanksNothing(t *testing.T) {
	records, err := costing.Rank(nil, 0.1, market.EmptyPriceTable(), economy.StandardDefaults())

	require.NoError(t, err)
	assert.Empty(t, records)
}
