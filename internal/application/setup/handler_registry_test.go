package setup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	marketQueries "github.com/andrescamacho/warera-economy-go/internal/application/market/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	playgroundQueries "github.com/andrescamacho/warera-economy-go/internal/application/playground/queries"
	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/test/helpers"
)

func testEnvironment() economyQueries.Environment {
	return economyQueries.Environment{
		Catalog:       recipe.MustNewCatalog(recipe.MustNewRecipe("grain", "Grain", nil, 2, true)),
		Defaults:      economy.StandardDefaults(),
		DefaultSalary: 0.5,
	}
}

func TestCreateConfiguredMediator_EconomyOnly(t *testing.T) {
	// Arrange
	registry := NewHandlerRegistry(testEnvironment(), nil, PlaygroundDeps{})

	// Act
	m, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)

	// Assert
	resp, err := mediator.Send[*economyQueries.CalculateCostResponse](context.Background(), m, &economyQueries.CalculateCostQuery{ItemID: "grain"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, resp.Cost, 1e-9)

	_, err = m.Send(context.Background(), &playgroundQueries.ResolveUsernameQuery{Username: "alice"})
	assert.Error(t, err, "playground is not registered without a resolver")
	_, err = m.Send(context.Background(), &marketQueries.GetMarketDataQuery{})
	assert.Error(t, err)
}

func TestCreateConfiguredMediator_AppliesMiddleware(t *testing.T) {
	registry := NewHandlerRegistry(testEnvironment(), nil, PlaygroundDeps{
		Resolver: helpers.NewMockUsernameResolver(map[string]string{"alice": "id-1"}),
	})
	var seen []string
	mw := func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		seen = append(seen, "outer")
		return next(ctx, request)
	}

	m, err := registry.CreateConfiguredMediator(mw)
	require.NoError(t, err)

	resp, err := mediator.Send[*playgroundQueries.ResolveUsernameResponse](context.Background(), m, &playgroundQueries.ResolveUsernameQuery{Username: "alice"})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, []string{"outer"}, seen)
}

func TestCreateConfiguredMediator_ExplicitPricesFlowThrough(t *testing.T) {
	registry := NewHandlerRegistry(testEnvironment(), nil, PlaygroundDeps{})
	m, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)
	prices := market.MustNewPriceTable(map[string]float64{"grain": 4})

	resp, err := mediator.Send[*economyQueries.RankProfitabilityResponse](context.Background(), m, &economyQueries.RankProfitabilityQuery{Prices: &prices})

	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.InDelta(t, 3.0, resp.Records[0].NetProfit, 1e-9)
}
