package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/test/helpers"
)

func breadCatalog() *recipe.Catalog {
	return recipe.MustNewCatalog(
		recipe.MustNewRecipe("grain", "Grain", nil, 1, true),
		recipe.MustNewRecipe("bread", "Bread", []recipe.Input{{ItemID: "grain", Quantity: 2}}, 5, false),
	)
}

func price(id string, p float64) market.MarketPrice {
	return market.MarketPrice{ProductID: id, AveragePrice: p, LastUpdated: helpers.FixedTime}
}

type fixture struct {
	clock   *shared.MockClock
	source  *helpers.MockPriceSource
	store   *helpers.MockSnapshotStore
	service *PriceCacheService
}

func newFixture(cached *market.Snapshot, opts PriceCacheOptions) *fixture {
	f := &fixture{
		clock:  shared.NewMockClock(helpers.FixedTime),
		source: helpers.NewMockPriceSource(price("grain", 1), price("bread", 6)),
		store:  helpers.NewMockSnapshotStore(cached),
	}
	f.service = NewPriceCacheService(f.source, f.store, breadCatalog(), f.clock, opts)
	return f
}

func TestGetMarketData_FreshSnapshotIsServedFromCache(t *testing.T) {
	// Arrange
	cached := market.NewSnapshot([]market.MarketPrice{price("bread", 5)}, helpers.FixedTime.Add(-10*time.Minute))
	f := newFixture(cached, PriceCacheOptions{StaleAfter: time.Hour})

	// Act
	data, err := f.service.GetMarketData(context.Background(), false)

	// Assert
	require.NoError(t, err)
	assert.False(t, data.WasUpdated)
	assert.Empty(t, data.ErrorTag)
	assert.Equal(t, cached.Timestamp, data.Timestamp)
	require.Len(t, data.Prices, 1)
	assert.Equal(t, 5.0, data.Prices[0].AveragePrice)
	assert.Equal(t, 0, f.source.Calls())
}

func TestGetMarketData_StaleSnapshotIsRefreshed(t *testing.T) {
	// Arrange
	cached := market.NewSnapshot([]market.MarketPrice{price("bread", 5)}, helpers.FixedTime.Add(-2*time.Hour))
	f := newFixture(cached, PriceCacheOptions{StaleAfter: time.Hour})

	// Act
	data, err := f.service.GetMarketData(context.Background(), false)

	// Assert
	require.NoError(t, err)
	assert.True(t, data.WasUpdated)
	assert.Len(t, data.Prices, 2)
	assert.Equal(t, helpers.FixedTime, data.Timestamp)
	assert.Equal(t, []string{"grain", "bread"}, f.source.LastItemIDs(), "every catalog item is scraped")
	assert.Equal(t, 1, f.store.Saves())
	assert.Equal(t, helpers.FixedTime, f.store.Snapshot().Timestamp)
}

func TestGetMarketData_ForceBypassesFreshCache(t *testing.T) {
	cached := market.NewSnapshot([]market.MarketPrice{price("bread", 5)}, helpers.FixedTime)
	f := newFixture(cached, PriceCacheOptions{})

	data, err := f.service.GetMarketData(context.Background(), true)

	require.NoError(t, err)
	assert.True(t, data.WasUpdated)
	assert.Equal(t, 1, f.source.Calls())
}

func TestGetMarketData_ExpiredTokenFallsBackToCachedPrices(t *testing.T) {
	// Arrange
	cached := market.NewSnapshot([]market.MarketPrice{price("bread", 5)}, helpers.FixedTime.Add(-3*time.Hour))
	f := newFixture(cached, PriceCacheOptions{})
	f.source.SetError(market.ErrTokenExpired)

	// Act
	data, err := f.service.GetMarketData(context.Background(), false)

	// Assert
	require.NoError(t, err, "refresh failures are reported in-band")
	assert.Equal(t, "TOKEN_EXPIRED", data.ErrorTag)
	assert.False(t, data.WasUpdated)
	require.Len(t, data.Prices, 1)
	assert.Equal(t, 5.0, data.Prices[0].AveragePrice)
	assert.Equal(t, 0, f.store.Saves())
}

func TestGetMarketData_FailureWithoutCacheReturnsEmpty(t *testing.T) {
	f := newFixture(nil, PriceCacheOptions{})
	f.source.SetError(errors.New("upstream down"))

	data, err := f.service.GetMarketData(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, "upstream down", data.ErrorTag)
	assert.NotNil(t, data.Prices)
	assert.Empty(t, data.Prices)
}

func TestGetMarketData_EmptyScrapeKeepsPreviousSnapshot(t *testing.T) {
	cached := market.NewSnapshot([]market.MarketPrice{price("bread", 5)}, helpers.FixedTime.Add(-3*time.Hour))
	f := newFixture(cached, PriceCacheOptions{})
	f.source.SetPrices()

	data, err := f.service.GetMarketData(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, ErrNoPricesScraped.Error(), data.ErrorTag)
	assert.Same(t, cached, f.store.Snapshot())
}

func TestGetMarketData_StoreLoadErrorIsTreatedAsNoCache(t *testing.T) {
	f := newFixture(nil, PriceCacheOptions{})
	f.store.LoadErr = errors.New("corrupt cache file")

	data, err := f.service.GetMarketData(context.Background(), false)

	require.NoError(t, err)
	assert.True(t, data.WasUpdated)
	assert.Len(t, data.Prices, 2)
}

func TestGetMarketData_SaveErrorStillServesFreshPrices(t *testing.T) {
	f := newFixture(nil, PriceCacheOptions{})
	f.store.SaveErr = errors.New("disk full")

	data, err := f.service.GetMarketData(context.Background(), false)

	require.NoError(t, err)
	assert.True(t, data.WasUpdated)
	assert.Len(t, data.Prices, 2)
}

func TestGetMarketData_ConcurrentCallersShareOneScrape(t *testing.T) {
	// Arrange
	f := newFixture(nil, PriceCacheOptions{})
	f.source.Gate = make(chan struct{})

	// Act
	const callers = 8
	var wg sync.WaitGroup
	results := make([]*MarketData, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.service.GetMarketData(context.Background(), true)
		}(i)
	}
	// Let every caller reach the in-flight refresh before it completes
	time.Sleep(50 * time.Millisecond)
	close(f.source.Gate)
	wg.Wait()

	// Assert
	assert.Equal(t, 1, f.source.Calls())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Len(t, r.Prices, 2)
	}
}

func TestGetMarketData_BackgroundRefreshServesStaleImmediately(t *testing.T) {
	// Arrange
	cached := market.NewSnapshot([]market.MarketPrice{price("bread", 5)}, helpers.FixedTime.Add(-2*time.Hour))
	f := newFixture(cached, PriceCacheOptions{StaleAfter: time.Hour, BackgroundRefresh: true})

	// Act
	data, err := f.service.GetMarketData(context.Background(), false)
	f.service.Wait()

	// Assert
	require.NoError(t, err)
	assert.True(t, data.Stale)
	assert.False(t, data.WasUpdated)
	assert.Equal(t, 5.0, data.Prices[0].AveragePrice)
	assert.Equal(t, 1, f.source.Calls())
	assert.Equal(t, helpers.FixedTime, f.store.Snapshot().Timestamp)

	// The next call sees the refreshed snapshot
	next, err := f.service.GetMarketData(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, next.Stale)
	assert.Len(t, next.Prices, 2)
}

func TestCurrentPrices_MergesOverrides(t *testing.T) {
	cached := market.NewSnapshot([]market.MarketPrice{price("bread", 5), price("grain", 1)}, helpers.FixedTime)
	f := newFixture(cached, PriceCacheOptions{})
	f.service.SetOverrides(map[string]float64{"BREAD": 7, "fish": 3})

	table, err := f.service.CurrentPrices(context.Background())

	require.NoError(t, err)
	p, _ := table.Lookup("bread")
	assert.Equal(t, 7.0, p)
	p, _ = table.Lookup("grain")
	assert.Equal(t, 1.0, p)
	assert.True(t, table.Has("fish"))
}
