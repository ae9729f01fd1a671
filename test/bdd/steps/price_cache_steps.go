package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/warera-economy-go/internal/application/market/services"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/test/helpers"
)

type priceCacheContext struct {
	clock   *shared.MockClock
	source  *helpers.MockPriceSource
	store   *persistence.SnapshotRepositoryGORM
	service *services.PriceCacheService

	data *services.MarketData
	err  error
}

func (ctx *priceCacheContext) reset() {
	ctx.clock = shared.NewMockClock(helpers.FixedTime)
	ctx.source = helpers.NewMockPriceSource()
	ctx.store = nil
	ctx.service = nil
	ctx.data = nil
	ctx.err = nil
}

func priceCacheCatalog() *recipe.Catalog {
	return recipe.MustNewCatalog(
		recipe.MustNewRecipe("grain", "Grain", nil, 1, true),
		recipe.MustNewRecipe("bread", "Bread", []recipe.Input{{ItemID: "grain", Quantity: 2}}, 1, false),
	)
}

// ============================================================================
// Given Steps
// ============================================================================

func (ctx *priceCacheContext) thePriceCacheIsBackedByTheDatabaseWithAHourStalenessWindow(hours int) error {
	if helpers.SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}
	ctx.store = persistence.NewSnapshotRepository(helpers.SharedTestDB)
	ctx.service = services.NewPriceCacheService(
		ctx.source,
		ctx.store,
		priceCacheCatalog(),
		ctx.clock,
		services.PriceCacheOptions{StaleAfter: time.Duration(hours) * time.Hour},
	)
	return nil
}

func (ctx *priceCacheContext) theScraperReturnsPrices(table *godog.Table) error {
	var prices []market.MarketPrice
	for _, row := range table.Rows[1:] {
		p, err := strconv.ParseFloat(getCellValueFromTable(table, row, "price"), 64)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		prices = append(prices, market.MarketPrice{
			ProductID:    getCellValueFromTable(table, row, "item"),
			AveragePrice: p,
			LastUpdated:  ctx.clock.Now(),
		})
	}
	ctx.source.SetPrices(prices...)
	return nil
}

func (ctx *priceCacheContext) theScraperRejectsTheSessionToken() error {
	ctx.source.SetError(market.ErrTokenExpired)
	return nil
}

func (ctx *priceCacheContext) minutesPass(minutes int) error {
	ctx.clock.Advance(time.Duration(minutes) * time.Minute)
	return nil
}

func (ctx *priceCacheContext) hoursPass(hours int) error {
	ctx.clock.Advance(time.Duration(hours) * time.Hour)
	return nil
}

// ============================================================================
// When Steps
// ============================================================================

func (ctx *priceCacheContext) iRequestMarketData() error {
	return ctx.getMarketData(false)
}

func (ctx *priceCacheContext) iForceAMarketDataRefresh() error {
	return ctx.getMarketData(true)
}

func (ctx *priceCacheContext) getMarketData(force bool) error {
	if ctx.service == nil {
		return fmt.Errorf("price cache not configured")
	}
	ctx.data, ctx.err = ctx.service.GetMarketData(context.Background(), force)
	return nil
}

// ============================================================================
// Then Steps
// ============================================================================

func (ctx *priceCacheContext) theMarketDataShouldBeUpdated(not string) error {
	if ctx.err != nil {
		return fmt.Errorf("market data request failed: %w", ctx.err)
	}
	want := not == ""
	if ctx.data.WasUpdated != want {
		return fmt.Errorf("expected WasUpdated=%v, got %v", want, ctx.data.WasUpdated)
	}
	return nil
}

func (ctx *priceCacheContext) theMarketDataShouldContainPrices(expected int) error {
	if ctx.err != nil {
		return fmt.Errorf("market data request failed: %w", ctx.err)
	}
	if len(ctx.data.Prices) != expected {
		return fmt.Errorf("expected %d prices, got %d", expected, len(ctx.data.Prices))
	}
	return nil
}

func (ctx *priceCacheContext) theDatabaseShouldHoldASnapshotWithPrices(expected int) error {
	snapshot, err := ctx.store.Load(context.Background())
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("no snapshot stored")
	}
	if len(snapshot.Prices) != expected {
		return fmt.Errorf("expected %d stored prices, got %d", expected, len(snapshot.Prices))
	}
	return nil
}

func (ctx *priceCacheContext) theScraperShouldHaveBeenCalledTimes(expected int) error {
	if got := ctx.source.Calls(); got != expected {
		return fmt.Errorf("expected %d scraper calls, got %d", expected, got)
	}
	return nil
}

func (ctx *priceCacheContext) theMarketDataErrorShouldBe(tag string) error {
	if ctx.err != nil {
		return fmt.Errorf("market data request failed: %w", ctx.err)
	}
	if ctx.data.ErrorTag != tag {
		return fmt.Errorf("expected error tag %q, got %q", tag, ctx.data.ErrorTag)
	}
	return nil
}

// RegisterPriceCacheSteps registers the price cache step definitions
func RegisterPriceCacheSteps(sc *godog.ScenarioContext) {
	ctx := &priceCacheContext{}

	sc.Before(func(bddCtx context.Context, sc *godog.Scenario) (context.Context, error) {
		ctx.reset()
		if helpers.SharedTestDB != nil {
			if err := helpers.TruncateAllTables(); err != nil {
				return bddCtx, err
			}
		}
		return bddCtx, nil
	})

	sc.Step(`^the price cache is backed by the database with a (\d+) hours? staleness window$`,
		ctx.thePriceCacheIsBackedByTheDatabaseWithAHourStalenessWindow)
	sc.Step(`^the scraper returns prices:$`, ctx.theScraperReturnsPrices)
	sc.Step(`^the scraper rejects the session token$`, ctx.theScraperRejectsTheSessionToken)
	sc.Step(`^(\d+) minutes? pass(?:es)?$`, ctx.minutesPass)
	sc.Step(`^(\d+) hours? pass(?:es)?$`, ctx.hoursPass)

	sc.Step(`^I request market data$`, ctx.iRequestMarketData)
	sc.Step(`^I force a market data refresh$`, ctx.iForceAMarketDataRefresh)

	sc.Step(`^the market data should (not )?be updated$`, ctx.theMarketDataShouldBeUpdated)
	sc.Step(`^the market data should contain (\d+) prices?$`, ctx.theMarketDataShouldContainPrices)
	sc.Step(`^the database should hold a snapshot with (\d+) prices?$`, ctx.theDatabaseShouldHoldASnapshotWithPrices)
	sc.Step(`^the scraper should have been called (\d+) times?$`, ctx.theScraperShouldHaveBeenCalledTimes)
	sc.Step(`^the market data error should be "([^"]*)"$`, ctx.theMarketDataErrorShouldBe)
}
