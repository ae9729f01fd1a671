package economy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

func TestStandardDefaults_Policy(t *testing.T) {
	d := economy.StandardDefaults()

	assert.Equal(t, 0.24, d.WorkOutputFactor)
	assert.Equal(t, 24.0, d.AutomationWorkPerLevel)
	assert.Equal(t, 0.0, d.MissingPrice)
	assert.Equal(t, 0.0, d.MissingRecipeCost)
	assert.Equal(t, 1.0, d.MissingRecipeWorkPoints)
	assert.Equal(t, 0.5, d.InternalUseThreshold)
}

func TestDefaults_PriceOf(t *testing.T) {
	d := economy.StandardDefaults()
	prices := market.MustNewPriceTable(map[string]float64{"fish": 2})

	assert.Equal(t, 2.0, d.PriceOf(prices, "fish"))
	assert.Equal(t, 0.0, d.PriceOf(prices, "steak"))

	d.MissingPrice = 7
	assert.Equal(t, 7.0, d.PriceOf(prices, "steak"))
}

func TestDefaults_WorkPointsOf(t *testing.T) {
	d := economy.StandardDefaults()
	catalog := recipe.MustNewCatalog(
		recipe.MustNewRecipe("bread", "Bread", nil, 2, false),
		recipe.MustNewRecipe("air", "Air", nil, 0, true),
	)

	assert.Equal(t, 2.0, d.WorkPointsOf(catalog, "bread"))
	assert.Equal(t, 1.0, d.WorkPointsOf(catalog, "unknown"))
	assert.Equal(t, 1.0, d.WorkPointsOf(catalog, "air"))
	assert.Equal(t, 1.0, d.WorkPointsOf(nil, "bread"))
}

func TestDefaults_ClampLevel(t *testing.T) {
	d := economy.StandardDefaults()

	assert.Equal(t, 1, d.ClampLevel(0))
	assert.Equal(t, 5, d.ClampLevel(5))
	assert.Equal(t, 20, d.ClampLevel(25))
}
