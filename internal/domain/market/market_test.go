package market_test

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
)

func TestNewPriceTable_RejectsMalformedPrices(t *testing.T) {
	for _, p := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := market.NewPriceTable(map[string]float64{"grain": p})
		assert.ErrorIs(t, err, market.ErrInvalidPrice, "price %v", p)
	}

	_, err := market.NewPriceTable(map[string]float64{" ": 1})
	assert.ErrorIs(t, err, market.ErrInvalidItemID)
}

func TestPriceTable_LookupIgnoresCase(t *testing.T) {
	table := market.MustNewPriceTable(map[string]float64{"cookedFish": 3.2})

	p, ok := table.Lookup("COOKEDFISH")

	assert.True(t, ok)
	assert.Equal(t, 3.2, p)
	assert.False(t, table.Has("fish"))
	assert.Equal(t, []string{"cookedfish"}, table.ItemIDs())
}

func TestPriceTable_WithDoesNotMutateOriginal(t *testing.T) {
	original := market.MustNewPriceTable(map[string]float64{"grain": 0.5})

	updated, err := original.With("grain", 0.9)

	require.NoError(t, err)
	p, _ := original.Lookup("grain")
	assert.Equal(t, 0.5, p)
	p, _ = updated.Lookup("grain")
	assert.Equal(t, 0.9, p)
}

func TestMergePrices_OverrideWins(t *testing.T) {
	// Arrange
	scraped := []market.MarketPrice{
		{ProductID: "grain", AveragePrice: 0.5},
		{ProductID: "bread", AveragePrice: 4.1},
	}
	overrides := map[string]float64{"Bread": 3.0, "steel": 12}

	// Act
	table, err := market.MergePrices(scraped, overrides)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	bread, _ := table.Lookup("bread")
	assert.Equal(t, 3.0, bread)
	grain, _ := table.Lookup("grain")
	assert.Equal(t, 0.5, grain)
	assert.True(t, table.Has("steel"))
}

func TestMergePrices_OverrideForUnscrapedItemIsAdded(t *testing.T) {
	// nothing was scraped for steel, the override alone prices it
	table, err := market.MergePrices([]market.MarketPrice{{ProductID: "grain", AveragePrice: 0.5}}, map[string]float64{"Steel": 12})

	require.NoError(t, err)
	assert.Equal(t, []string{"grain", "steel"}, table.ItemIDs())
	steel, ok := table.Lookup("steel")
	require.True(t, ok)
	assert.Equal(t, 12.0, steel)

	onlyOverrides, err := market.MergePrices(nil, map[string]float64{"steel": 12})
	require.NoError(t, err)
	assert.Equal(t, 1, onlyOverrides.Len())
}

func TestSnapshot_IsStale(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	snapshot := market.NewSnapshot(nil, now.Add(-59*time.Minute))

	assert.False(t, snapshot.IsStale(now, market.DefaultStaleAfter))
	assert.True(t, snapshot.IsStale(now.Add(2*time.Minute), market.DefaultStaleAfter))

	var missing *market.Snapshot
	assert.True(t, missing.IsStale(now, market.DefaultStaleAfter))
}

func TestErrorTag(t *testing.T) {
	assert.Equal(t, "", market.ErrorTag(nil))
	assert.Equal(t, "TOKEN_EXPIRED", market.ErrorTag(fmt.Errorf("scrape: %w", market.ErrTokenExpired)))
	assert.Equal(t, "boom", market.ErrorTag(errors.New("boom")))
}
